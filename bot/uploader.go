package bot

import (
	"context"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
)

// Uploader delivers a downloaded artifact to Telegram. The returned message
// ID identifies the upload inside the dump channel so it can be forwarded.
type Uploader interface {
	// Upload sends the file at req.Path to the dump channel
	Upload(ctx context.Context, req *UploadRequest) (int, error)
	// Forward relays an uploaded message from the dump channel to a chat
	Forward(ctx context.Context, messageID int, toChatID int64) error
}

// UploadRequest describes one artifact to deliver
type UploadRequest struct {
	// Path is the local file to upload
	Path string
	// Filename is the name shown to the receiving user
	Filename string
	// Caption is attached to the uploaded document (may be empty)
	Caption string
	// AsVideo requests a streamable video attribute on the document
	AsVideo bool
}

// TelegramUploader uploads artifacts through the bot's MTProto connection
type TelegramUploader struct {
	bot       *TelegramBot
	channelID int64
	logger    *log.Logger
}

// NewTelegramUploader creates an uploader that targets the given dump channel
func NewTelegramUploader(bot *TelegramBot, channelID int64, logger *log.Logger) *TelegramUploader {
	return &TelegramUploader{
		bot:       bot,
		channelID: channelID,
		logger:    logger,
	}
}

// Upload sends the file to the dump channel and returns the resulting message ID
func (u *TelegramUploader) Upload(ctx context.Context, req *UploadRequest) (int, error) {
	client := u.bot.GetClient()
	if client == nil {
		return 0, fmt.Errorf("bot client is not initialized")
	}

	peer, err := u.resolvePeer(u.channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve dump channel peer: %w", err)
	}

	api := client.API()
	up := uploader.NewUploader(api)
	sender := message.NewSender(api).WithUploader(up)

	u.logger.Printf("Uploading %s (%s) to channel %d", req.Filename, req.Path, u.channelID)

	file, err := up.FromPath(ctx, req.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to upload file data: %w", err)
	}

	document := message.UploadedDocument(file, styling.Plain(req.Caption))
	document.Filename(req.Filename).MIME(mimeForFilename(req.Filename))
	if req.AsVideo {
		document.Attributes(&tg.DocumentAttributeVideo{SupportsStreaming: true})
	}

	updates, err := sender.To(peer).Media(ctx, document)
	if err != nil {
		return 0, fmt.Errorf("failed to send document: %w", err)
	}

	messageID := extractUploadedMessageID(updates)
	if messageID == 0 {
		return 0, fmt.Errorf("upload succeeded but message ID could not be determined")
	}

	u.logger.Printf("Uploaded %s as message %d in channel %d", req.Filename, messageID, u.channelID)
	return messageID, nil
}

// Forward relays an uploaded message from the dump channel to a chat
func (u *TelegramUploader) Forward(ctx context.Context, messageID int, toChatID int64) error {
	client := u.bot.GetClient()
	if client == nil {
		return fmt.Errorf("bot client is not initialized")
	}

	fromPeer, err := u.resolvePeer(u.channelID)
	if err != nil {
		return fmt.Errorf("failed to resolve dump channel peer: %w", err)
	}

	toPeer, err := u.resolvePeer(toChatID)
	if err != nil {
		return fmt.Errorf("failed to resolve destination peer: %w", err)
	}

	request := &tg.MessagesForwardMessagesRequest{
		FromPeer: fromPeer,
		ToPeer:   toPeer,
		ID:       []int{messageID},
		RandomID: []int64{time.Now().UnixNano()},
	}

	if _, err := client.API().MessagesForwardMessages(ctx, request); err != nil {
		return fmt.Errorf("failed to forward message %d to chat %d: %w", messageID, toChatID, err)
	}

	return nil
}

// resolvePeer turns a chat ID into an input peer. Channels need an access
// hash, which the session peer storage only has after the bot has seen the
// channel, so the bot must be a member of the dump channel.
func (u *TelegramUploader) resolvePeer(chatID int64) (tg.InputPeerClass, error) {
	client := u.bot.GetClient()

	if peer := client.PeerStorage.GetInputPeerById(chatID); peer != nil {
		if _, empty := peer.(*tg.InputPeerEmpty); !empty {
			return peer, nil
		}
	}

	// Fall back to hash-less peers for users and basic groups
	if chatID > 0 {
		return &tg.InputPeerUser{UserID: chatID}, nil
	}
	if chatID > -1000000000000 {
		return &tg.InputPeerChat{ChatID: -chatID}, nil
	}

	return nil, fmt.Errorf("peer %d is unknown, add the bot to the channel first", chatID)
}

// extractUploadedMessageID pulls the new message ID out of the update set
// returned by a media send
func extractUploadedMessageID(updates tg.UpdatesClass) int {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		for _, update := range u.Updates {
			switch upd := update.(type) {
			case *tg.UpdateNewChannelMessage:
				if msg, ok := upd.Message.(*tg.Message); ok {
					return msg.ID
				}
			case *tg.UpdateNewMessage:
				if msg, ok := upd.Message.(*tg.Message); ok {
					return msg.ID
				}
			case *tg.UpdateMessageID:
				return upd.ID
			}
		}
	case *tg.UpdatesCombined:
		for _, update := range u.Updates {
			if upd, ok := update.(*tg.UpdateNewChannelMessage); ok {
				if msg, ok := upd.Message.(*tg.Message); ok {
					return msg.ID
				}
			}
		}
	}
	return 0
}

// mimeForFilename guesses a MIME type from the file extension
func mimeForFilename(filename string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(filename)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}
