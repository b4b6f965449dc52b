package account

type meOutput struct {
	Body meResponse
}

type meResponse struct {
	ID                  int    `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	HasPassword         bool   `json:"hasPassword" doc:"Secondary password is set"`
	HasRecoveryKey      bool   `json:"hasRecoveryKey"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
	SecondFactor        bool   `json:"secondFactor" doc:"Secondary password verified in this session"`
}

type passwordInput struct {
	Body struct {
		Password string `json:"password" minLength:"1" doc:"Secondary password"`
	}
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status string `json:"status" example:"Ok"`
}

type recoveryKeyStatusOutput struct {
	Body struct {
		IsSet bool `json:"isSet"`
	}
}

type recoveryKeyInput struct {
	Body struct {
		RecoveryKey string `json:"recoveryKey,omitempty" doc:"Own key; a random one is generated when empty"`
	}
}

type recoveryKeyOutput struct {
	Status int
	Body   struct {
		RecoveryKey string `json:"recoveryKey" doc:"Shown once, store it safely"`
	}
}
