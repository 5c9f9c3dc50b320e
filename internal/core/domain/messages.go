package domain

// Client-facing validation messages.
const (
	MsgRequired           = "Missing data for required field."
	MsgUsernameTooShort   = "Username must be at least 4 characters long."
	MsgUsernameTooLong    = "Username must be at most 60 characters long."
	MsgUsernameAllDigits  = "Username cannot consist of digits only."
	MsgUserExists         = "User with this username already exists."
	MsgEmailInvalid       = "Invalid email format."
	MsgEmailTooLong       = "Email must be at most 60 characters long."
	MsgEmailExists        = "User with this email already exists."
	MsgPasswordLength     = "Length must be between 8 and 60."
	MsgPasswordNotSecure  = "Password must contain upper and lower case letters, digits and special characters."
	MsgInvalidField       = "Invalid value."
	MsgAuthorization      = "Authorization error"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUserNotFound       = "User not found"
	MsgInternal           = "Internal Server Error"
)
