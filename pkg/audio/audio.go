// Package audio drains an engine's resampled stereo audio queue into
// an SDL2 audio device, outside the dependency-free engine package.
//
// Grounded on RetroCodeRamen-Nitro-Core-DX/internal/ui/ui.go's
// QueueAudio-based sink (OpenAudioDevice once, PauseAudioDevice(false),
// then byte-pack and sdl.QueueAudio samples every frame, backing off
// when the device queue already holds enough buffered audio) rather
// than thelolagemann-gomeboy/pkg/audio/sdl.go's cgo AudioCallback
// export, which needs a C compiler in the build and is otherwise
// functionally identical — QueueAudio needs none.
package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Source is the subset of internal/engine.Engine a Sink drains.
type Source interface {
	TakeAudioSample() (left, right int16, ok bool)
}

// Sink owns one SDL2 audio device queuing AUDIO_S16SYS stereo samples.
type Sink struct {
	dev        sdl.AudioDeviceID
	sampleRate int

	// maxQueuedBytes caps how far the device queue may grow before
	// Drain starts dropping samples, so a slow host doesn't
	// accumulate unbounded audio latency (mirrors gomeboy's own
	// "skip this frame" queue-size check).
	maxQueuedBytes uint32
}

// Open opens the default SDL2 audio device at sampleRateHz, 2-channel
// 16-bit signed native-endian, and starts playback.
func Open(sampleRateHz int) (*Sink, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("audio: init: %w", err)
	}

	spec := sdl.AudioSpec{
		Freq:     int32(sampleRateHz),
		Format:   sdl.AUDIO_S16SYS,
		Channels: 2,
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	sdl.PauseAudioDevice(dev, false)

	return &Sink{
		dev:            dev,
		sampleRate:     sampleRateHz,
		maxQueuedBytes: uint32(sampleRateHz) * 4, // ~1 second of stereo S16 audio
	}, nil
}

// Drain pulls every sample currently queued on src and forwards it to
// the device, unless the device's own queue is already backed up
// past maxQueuedBytes, in which case the batch is dropped rather than
// built up indefinitely.
func (s *Sink) Drain(src Source) error {
	batch := drainToBytes(src)
	if len(batch) == 0 {
		return nil
	}
	if sdl.GetQueuedAudioSize(s.dev) >= s.maxQueuedBytes {
		return nil
	}
	return sdl.QueueAudio(s.dev, batch)
}

// drainToBytes pulls every queued stereo sample from src and packs it
// as little-endian S16 stereo frames, split out from Drain so the
// packing logic is testable without an actual SDL audio device.
func drainToBytes(src Source) []byte {
	var batch []byte
	for {
		left, right, ok := src.TakeAudioSample()
		if !ok {
			break
		}
		var frame [4]byte
		binary.LittleEndian.PutUint16(frame[0:2], uint16(left))
		binary.LittleEndian.PutUint16(frame[2:4], uint16(right))
		batch = append(batch, frame[:]...)
	}
	return batch
}

// Close stops playback and releases the device.
func (s *Sink) Close() {
	sdl.CloseAudioDevice(s.dev)
}
