package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JustZavala/onboard/internal/logger"
)

// VoiceReply is the outcome of one spoken turn.
type VoiceReply struct {
	Transcript string
	Reply      string
	Audio      []byte // synthesized reply, nil when SpeechErr is set
	SpeechErr  error
}

// VoiceTurn transcribes audio, sends the transcript through conv and speaks
// the reply. Synthesis failures are reported in VoiceReply.SpeechErr; the
// text reply is still returned.
func VoiceTurn(ctx context.Context, conv *Conversation, t Transcriber, c Completer, s Synthesizer, audio io.Reader, filename string) (*VoiceReply, error) {
	transcript, err := t.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, ErrNoSpeech
	}

	reply, err := conv.Send(ctx, c, transcript)
	if err != nil {
		return nil, err
	}

	out := &VoiceReply{Transcript: transcript, Reply: reply}
	if s == nil {
		return out, nil
	}
	audioOut, err := s.Synthesize(ctx, reply)
	if err != nil {
		logger.Warn("chat: speech synthesis failed: %v", err)
		out.SpeechErr = err
		return out, nil
	}
	out.Audio = audioOut
	return out, nil
}
