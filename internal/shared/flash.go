package shared

// FlashMessage represents a one-time notification shown on the next render.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
