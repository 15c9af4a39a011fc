package main

import (
	"fmt"
	"os"

	"github.com/JustZavala/onboard/internal/chat"
	"github.com/JustZavala/onboard/internal/config"
	chatui "github.com/JustZavala/onboard/internal/tui/chat"
	"github.com/spf13/cobra"
)

var chatFlags struct {
	model    string
	voice    string
	audio    string
	speakOut string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the Spanish-speaking assistant",
	Long: `Talk to the Spanish-speaking assistant.

Without flags, opens a terminal chat. With --audio, transcribes the file,
sends it as one turn and prints the reply; --speak-out also writes the
spoken reply as mp3. Requires chat.api_key or OPENAI_API_KEY.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFlags.model, "model", "m", "", "Chat model (default: config chat.model)")
	chatCmd.Flags().StringVar(&chatFlags.voice, "voice", "", "Speech voice (default: config chat.voice)")
	chatCmd.Flags().StringVar(&chatFlags.audio, "audio", "", "Recorded audio to send as a single voice turn")
	chatCmd.Flags().StringVar(&chatFlags.speakOut, "speak-out", "", "Write the spoken reply to this file (with --audio)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		if cmd.Flags().Changed("model") {
			cfg.Chat.Model = chatFlags.model
		}
		if cmd.Flags().Changed("voice") {
			cfg.Chat.Voice = chatFlags.voice
		}
	})
	if err != nil {
		return err
	}

	client, err := chat.NewClient(cfg.Chat)
	if err != nil {
		return err
	}
	conv := chat.NewConversation(cfg.Chat.SystemPrompt)

	if chatFlags.audio == "" {
		return chatui.Run(conv, client)
	}

	f, err := os.Open(chatFlags.audio)
	if err != nil {
		return fmt.Errorf("opening audio: %w", err)
	}
	defer func() { _ = f.Close() }()

	var synth chat.Synthesizer
	if chatFlags.speakOut != "" {
		synth = client
	}
	out, err := chat.VoiceTurn(cmd.Context(), conv, client, client, synth, f, f.Name())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Lo que entendí: %s\n\n%s\n", out.Transcript, out.Reply)
	switch {
	case out.SpeechErr != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "No se pudo generar el audio: %v\n", out.SpeechErr)
	case out.Audio != nil:
		if err := os.WriteFile(chatFlags.speakOut, out.Audio, 0644); err != nil {
			return fmt.Errorf("writing speech: %w", err)
		}
		fmt.Fprintf(w, "\nAudio guardado en %s\n", chatFlags.speakOut)
	}
	return nil
}
