package tts

import "blabber/internal/profile"

// Request is one unit of speech work: the text to recite bound to the voice
// parameters it should be rendered with. A request is consumed exactly once
// by the source it is submitted to.
type Request struct {
	Text    string
	Profile profile.Profile
}

func NewRequest(text string, p profile.Profile) Request {
	return Request{Text: text, Profile: p}
}
