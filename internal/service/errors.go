package service

// Error codes carried by oops errors returned from this package. The HTTP
// layer switches on them to pick a status and message.
const (
	CodeValidation         = "VALIDATION"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidToken       = "INVALID_OR_EXPIRED_TOKEN"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeDeliveryFailure    = "DELIVERY_FAILURE"
	CodeCorruptCredential  = "AUTH_CORRUPT_CREDENTIAL"
	CodeInternal           = "INTERNAL"
)

// User-facing messages.
const (
	MsgAllFieldsRequired   = "All fields are required."
	MsgConflict            = "Username or email already exists."
	MsgLoginFieldsRequired = "Email and password are required."
	MsgInvalidCredentials  = "Invalid credentials."
	MsgEmailRequired       = "Email is required."
	MsgNoSuchEmail         = "No user with that email."
	MsgResetFieldsRequired = "Token and new password are required."
	MsgInvalidToken        = "Invalid or expired token."
	MsgDeliveryFailure     = "Failed to send password reset email."
	MsgInvalidUsername     = "Username must be between 3 and 32 characters."
	MsgInvalidEmail        = "Please enter a valid email."
	MsgInvalidPassword     = "Password must be between 6 and 72 characters."
	MsgRegistered          = "Registration successful! Please log in."
	MsgLoggedIn            = "Login successful!"
	MsgLoggedOut           = "Logged out successfully."
	MsgResetLinkSent       = "Password reset link sent to your email."
	MsgPasswordReset       = "Password has been reset. You can now log in."
	MsgNotAuthenticated    = "Not authenticated. Please log in."
	MsgInternalServerError = "Internal Server Error"
)
