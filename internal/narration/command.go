package narration

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"mockinterview/internal/services"
)

// CommandSynthesizer speaks through an espeak-ng compatible binary.
type CommandSynthesizer struct {
	Command        string
	WordsPerMinute int
}

// NewCommandSynthesizer creates a synthesizer that runs command.
func NewCommandSynthesizer(command string, wordsPerMinute int) *CommandSynthesizer {
	if strings.TrimSpace(command) == "" {
		command = "espeak-ng"
	}
	return &CommandSynthesizer{Command: command, WordsPerMinute: wordsPerMinute}
}

// Play runs the command in the background; canceling ctx kills it.
func (s *CommandSynthesizer) Play(ctx context.Context, u Utterance, done func(error)) {
	args := s.args(u)
	go func() {
		cmd := exec.CommandContext(ctx, s.Command, args...)
		output, err := cmd.CombinedOutput()
		if ctxErr := ctx.Err(); ctxErr != nil {
			done(ctxErr)
			return
		}
		if err != nil {
			detail := strings.TrimSpace(string(output))
			done(services.Wrap(services.ErrExternalService, "narration", "speak", detail, err))
			return
		}
		done(nil)
	}()
}

func (s *CommandSynthesizer) args(u Utterance) []string {
	args := make([]string, 0, 5)
	if u.Voice.ID != "" {
		args = append(args, "-v", u.Voice.ID)
	}
	if s.WordsPerMinute > 0 {
		args = append(args, "-s", strconv.Itoa(s.WordsPerMinute))
	}
	return append(args, u.Text)
}

// Voices lists the voices reported by `<command> --voices`.
func (s *CommandSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	path, err := exec.LookPath(s.Command)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narration", "list voices", fmt.Sprintf("binary %q not found", s.Command), err)
	}
	output, err := exec.CommandContext(ctx, path, "--voices").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, services.Wrap(services.ErrExternalService, "narration", "list voices", "", err)
	}
	return parseVoiceList(output), nil
}

// parseVoiceList reads the espeak-ng voice table:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
func parseVoiceList(output []byte) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		voices = append(voices, Voice{
			ID:     fields[1],
			Name:   strings.ReplaceAll(fields[3], "_", " "),
			Locale: fields[1],
		})
	}
	return voices
}
