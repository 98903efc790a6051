package usecase

// DeleteMarkerCount is exported for testing
var DeleteMarkerCount = deleteMarkerCount

// RunDelete is exported for testing the zero-marker guard
var RunDelete = (*EventUseCase).runDelete

// SelectOwnMessages is exported for testing
var SelectOwnMessages = selectOwnMessages

// SetTokenURL overrides the OAuth token endpoint for testing
func (uc *AuthUseCase) SetTokenURL(u string) {
	uc.tokenURL = u
}
