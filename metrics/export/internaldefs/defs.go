package internaldefs

import (
	wsession "github.com/x-ordo/WPaymentManager-sub005"
)

// CounterDef defines a public type used by wsession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   wsession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: wsession.MetricLoginSuccess, Name: "wsession_login_success_total", Help: "Successful login attempts."},
	{ID: wsession.MetricLoginFailure, Name: "wsession_login_failure_total", Help: "Failed login attempts."},
	{ID: wsession.MetricLoginRateLimited, Name: "wsession_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: wsession.MetricTokenIssued, Name: "wsession_token_issued_total", Help: "Minted session tokens."},
	{ID: wsession.MetricVerifyOK, Name: "wsession_verify_ok_total", Help: "Token verifications that succeeded."},
	{ID: wsession.MetricVerifyExpired, Name: "wsession_verify_expired_total", Help: "Token verifications rejected as expired."},
	{ID: wsession.MetricVerifyRejected, Name: "wsession_verify_rejected_total", Help: "Token verifications rejected as malformed or forged."},
	{ID: wsession.MetricLogout, Name: "wsession_logout_total", Help: "Logout operations."},
}
