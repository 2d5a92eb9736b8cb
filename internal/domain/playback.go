package domain

import "context"

// Station is a static radio catalog entry
type Station struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Genre     string `yaml:"genre"`
	StreamURL string `yaml:"stream_url"`
	Listeners int    `yaml:"listeners"`
}

// AudioTransport starts audio playback. Opening a stream is the "play"
// capability; closing it is "pause".
type AudioTransport interface {
	Open(ctx context.Context, url string, volume int) (AudioStream, error)
}

// AudioStream is a running playback
type AudioStream interface {
	SetVolume(volume int) error
	Close() error
}
