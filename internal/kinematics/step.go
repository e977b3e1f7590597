package kinematics

import "math"

// IntegrateStep advances one constant-acceleration sub-step. Heading follows
// psi' = psi + r*dt + 0.5*rdot*dt^2 and arc length ds = v*dt + 0.5*a*dt^2;
// the position projects ds along the midpoint heading (psi+psi')/2, which
// keeps a quarter-turn at constant speed on the unit circle.
func IntegrateStep(x, y, psi, v, r, dt, a, rdot float64) (xn, yn, psin, vn, rn float64) {
	psiNew := psi + r*dt + 0.5*rdot*dt*dt
	rNew := r + rdot*dt
	ds := v*dt + 0.5*a*dt*dt
	vNew := v + a*dt

	psiMid := 0.5 * (psi + psiNew)
	xn = x + ds*math.Cos(psiMid)
	yn = y + ds*math.Sin(psiMid)
	return xn, yn, psiNew, vNew, rNew
}

// integrateStepSlip is IntegrateStep with the travel direction offset by a
// body sideslip angle. The emitted heading stays psi'; only the projection
// direction shifts.
func integrateStepSlip(x, y, psi, v, r, dt, a, rdot, beta float64) (xn, yn, psin, vn, rn float64) {
	psiNew := psi + r*dt + 0.5*rdot*dt*dt
	rNew := r + rdot*dt
	ds := v*dt + 0.5*a*dt*dt
	vNew := v + a*dt

	dir := 0.5*(psi+psiNew) + beta
	xn = x + ds*math.Cos(dir)
	yn = y + ds*math.Sin(dir)
	return xn, yn, psiNew, vNew, rNew
}
