package speech

import "github.com/zhouzirui/shree/backend/internal/model/speech"

// fakeEngine records calls; events are fed to the controller directly.
type fakeEngine struct {
	supported bool
	voices    []speech.Voice
	speakErr  error

	spoken      []speech.SpeakRequest
	cancels     int
	voicesCalls int
	calls       []string
}

func (f *fakeEngine) Supported() bool { return f.supported }

func (f *fakeEngine) Voices() []speech.Voice {
	f.voicesCalls++
	return f.voices
}

func (f *fakeEngine) Speak(req speech.SpeakRequest) error {
	f.calls = append(f.calls, "speak")
	if f.speakErr != nil {
		return f.speakErr
	}
	f.spoken = append(f.spoken, req)
	return nil
}

func (f *fakeEngine) Cancel() {
	f.calls = append(f.calls, "cancel")
	f.cancels++
}

func (f *fakeEngine) Events() <-chan speech.Event { return nil }

func (f *fakeEngine) last() speech.SpeakRequest {
	return f.spoken[len(f.spoken)-1]
}
