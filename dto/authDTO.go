package dto

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email" message:"Please enter a valid email address"`
	Password string `json:"password" binding:"required" message:"Password is required"`
}

type SignupRequest struct {
	Name            string `json:"name" binding:"min=2" message:"Name must be at least 2 characters"`
	Email           string `json:"email" binding:"required,email" message:"Please enter a valid email address"`
	Phone           string `json:"phone" binding:"phone" message:"Phone number must be at least 10 digits"`
	Password        string `json:"password" binding:"min=6" message:"Password must be at least 6 characters"`
	ConfirmPassword string `json:"confirmPassword" binding:"eqfield=Password" message:"Passwords don't match"`
	AgreeToTerms    bool   `json:"agreeToTerms" binding:"accepted" message:"You must agree to the terms and conditions"`
	CaptchaToken    string `json:"captchaToken"`
}

type FederatedSignInRequest struct {
	IDToken string `json:"idToken" binding:"required" message:"Provider token is required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email" message:"Please enter a valid email address"`
}

type CaptchaRequest struct {
	Token  string `json:"token" binding:"required" message:"Token is required"`
	Action string `json:"action"`
}

type AssessmentResult struct {
	Score   float32
	Action  string
	Reasons []string
}
