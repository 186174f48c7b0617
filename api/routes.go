package api

// Provider API routes. The provider exposes fixed, non-discoverable paths;
// these mirror its published surface.
const (
	RouteValidateClient = "/api/clients/validate"
	RouteToken          = "/api/token"
	RouteUserInfo       = "/api/userinfo"

	RoutePhraseSetup  = "/api/recovery-phrase/setup"
	RoutePhraseVerify = "/api/recovery-phrase/verify"
	RoutePhraseStatus = "/api/recovery-phrase/status"

	RouteEmailStatus = "/api/email/status"
	RouteEmailResend = "/api/email/resend"

	RouteRecoveryVerifyPhrase  = "/api/recovery/verify-phrase"
	RouteRecoveryResetPassword = "/api/recovery/reset-password"

	RouteSecurityStatus = "/api/security/status"
)
