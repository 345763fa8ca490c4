package generation

import "time"

// ModelAttributes describes the virtual model the caller wants rendered.
// Every field is an opaque label from a closed option set; neutral sentinel
// values such as "default" or "average" mean "no distinguishing detail".
type ModelAttributes struct {
	Gender      string `json:"gender"`
	BodyType    string `json:"bodyType"`
	AgeRange    string `json:"ageRange"`
	Ethnicity   string `json:"ethnicity"`
	HairStyle   string `json:"hairStyle"`
	HairColor   string `json:"hairColor"`
	Height      string `json:"height"`
	Pose        string `json:"pose"`
	Accessories string `json:"accessories"`
}

// EnvironmentAttributes describes the scene around the model. A non-empty
// custom background takes precedence over the preset key.
type EnvironmentAttributes struct {
	BackgroundPreset string `json:"backgroundPreset"`
	BackgroundCustom string `json:"backgroundCustom"`
	Lighting         string `json:"lighting"`
	LensStyle        string `json:"lensStyle"`
	TimeOfDay        string `json:"timeOfDay"`
	Weather          string `json:"weather"`
	Season           string `json:"season"`
	CameraAngle      string `json:"cameraAngle"`
}

// RequestSettings wraps both attribute objects. Pointers let the service
// distinguish an absent object from an all-defaults one.
type RequestSettings struct {
	Model       *ModelAttributes       `json:"modelSettings"`
	Environment *EnvironmentAttributes `json:"environmentSettings"`
}

// Request is the inbound generation payload.
type Request struct {
	Settings  *RequestSettings `json:"settings"`
	ImageData string           `json:"imageData"`
}

// SettingsUsed is the verbatim copy of the request settings persisted with
// each generation record.
type SettingsUsed struct {
	Model       ModelAttributes       `json:"modelSettings"`
	Environment EnvironmentAttributes `json:"environmentSettings"`
}

// Record describes one completed generation, newest first in the metadata log.
type Record struct {
	GenerationID string       `json:"generationId"`
	CreatedAt    time.Time    `json:"createdAt"`
	SettingsUsed SettingsUsed `json:"settingsUsed"`
	PromptUsed   string       `json:"promptUsed"`
	ImagePath    string       `json:"imagePath"`
	Status       string       `json:"status"`
}

// Response is the uniform envelope every generation request resolves to.
type Response struct {
	Success    bool   `json:"success"`
	ImageURL   string `json:"imageUrl,omitempty"`
	PromptUsed string `json:"promptUsed,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Failure builds the failure shape of the envelope.
func Failure(message string) Response {
	return Response{Success: false, Message: message}
}
