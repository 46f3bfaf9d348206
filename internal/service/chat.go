package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
)

// Chat modes accepted by the assistant.
const (
	ChatModeHelp = "help"
	ChatModeFree = "free"
)

// Menu choices within the guided flow. "2" also exits free-form chat.
const (
	chatChoiceGuide = "1"
	chatChoiceExit  = "2"
)

// Canned assistant replies. Replies carry light HTML because the
// frontend renders them into the chat widget.
const (
	chatWelcome = "Hi! I'm the file vault assistant.<br>" +
		"Type <b>1</b> to see the usage guide or <b>2</b> to exit."

	chatGuide = "<b>What is this?</b><br>" +
		"A personal file vault: you organize files into folders you create, " +
		"every upload is kept, and you can preview, download, or delete " +
		"anything from the browser.<br><br>" +
		"<b>How do I use it?</b><br>" +
		"1. Register an account and log in.<br>" +
		"2. Create a folder; you can attach files to it right away.<br>" +
		"3. Upload files into a folder. Re-uploading a name keeps the old " +
		"copies and stores the new one with a _v1, _v2, ... suffix.<br>" +
		"4. Open a folder to list its files, click a file to preview it " +
		"inline, or download it to your device.<br>" +
		"5. Use the filter box to find files by name, and delete files or " +
		"whole folders you no longer need.<br><br>" +
		"Type <b>2</b> to exit, or anything else to see this menu again."

	chatFarewell = "Thanks for stopping by. See you soon!"

	chatOffline = "Free-form chat is not configured on this server. " +
		"Switch to help mode for a guided tour."

	chatExitHint = "<br><br>Type '2' to exit."
)

// ChatClient is the slice of a language-model provider the assistant
// needs: one prompt in, one reply out.
type ChatClient interface {
	Reply(ctx context.Context, message string) (string, error)
}

type chatService struct {
	client ChatClient // nil disables free-form chat; help mode still works
	logger *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(client ChatClient, logger *slog.Logger) services.ChatService {
	return &chatService{
		client: client,
		logger: logger,
	}
}

// Chat answers one assistant message according to its mode
func (s *chatService) Chat(ctx context.Context, req *models.ChatRequest) (string, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Mode,
			validation.Required,
			validation.In(ChatModeHelp, ChatModeFree),
		),
	); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	message := strings.TrimSpace(req.Message)

	if req.Mode == ChatModeHelp {
		return s.helpReply(message), nil
	}
	return s.freeReply(ctx, message)
}

// helpReply walks the guided menu: the menu choices select the guide or
// the farewell, anything else shows the menu again.
func (s *chatService) helpReply(message string) string {
	switch message {
	case chatChoiceGuide:
		return chatGuide
	case chatChoiceExit:
		return chatFarewell
	default:
		return chatWelcome
	}
}

func (s *chatService) freeReply(ctx context.Context, message string) (string, error) {
	if message == chatChoiceExit {
		return chatFarewell, nil
	}

	if s.client == nil {
		return chatOffline, nil
	}

	reply, err := s.client.Reply(ctx, message)
	if err != nil {
		s.logger.Error("assistant reply failed", "error", err)
		return "", fmt.Errorf("assistant reply: %w", err)
	}

	return reply + chatExitHint, nil
}
