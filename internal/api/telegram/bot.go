package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "xray-insights/internal/application"
	"xray-insights/internal/domain/entity"
)

const (
	msgStart = `🩻 X-ray Insight Scanner

Upload a chest X-ray to detect potential abnormalities using AI. A fine-tuned DenseNet121 model trained on the ChestX-ray14 dataset looks for common thoracic diseases like Pneumonia, Edema, Fibrosis, and more.

📸 Send me an X-ray image (photo or JPG/PNG file) to begin.`

	msgHelp = `⚙️ How it works:

1️⃣ Send a chest X-ray image (JPG or PNG)
2️⃣ Press "Upload & Analyze"
3️⃣ Read the predicted diseases with confidence scores
4️⃣ Press "Back" to scan another image

Commands:
/analyze — analyze the selected image
/back — clear the result

Disclaimer: this tool is for research and educational purposes only, not for clinical diagnosis.`

	msgNoFile         = "Please upload an X-ray image"
	msgSelected       = "🖼 Selected %s. Press the button to analyze it."
	msgAnalyzing      = "⏳ Analyzing..."
	msgInProgress     = "⏳ Analysis is already running, please wait."
	msgResultShown    = "Press Back before analyzing another image."
	msgNothingToReset = "There is no result to clear."
	msgReady          = "Send me a new X-ray image."
	msgNotImage       = "Only image files are supported."
	msgDownloadError  = "⚠️ Could not download the image. Please try again."
	msgUnknownCommand = "❓ Unknown command. Use /help."
	msgInsights       = "🧠 Insights\n\n%s"

	callbackAnalyze = "analyze"
	callbackBack    = "back"
)

// Bot — Telegram-интерфейс к сценарию анализа снимка.
type Bot struct {
	api          *tgbotapi.BotAPI
	scans        *app.ScanService
	http         *http.Client
	fileEndpoint string // формат ссылки на файл: токен, путь
}

// NewBot создаёт нового бота
func NewBot(token string, scans *app.ScanService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return newBot(api, scans, tgbotapi.FileEndpoint), nil
}

func newBot(api *tgbotapi.BotAPI, scans *app.ScanService, fileEndpoint string) *Bot {
	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:          api,
		scans:        scans,
		http:         &http.Client{},
		fileEndpoint: fileEndpoint,
	}
}

// Run запускает основной цикл обработки обновлений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Анализ может идти долго, не блокируем остальные чаты.
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	if fileID, name, contentType, ok := imageFromMessage(msg); ok {
		b.selectFile(ctx, chatID, fileID, name, contentType)
		return
	}

	if msg.Document != nil {
		b.sendMessage(chatID, msgNotImage, nil)
		return
	}

	b.sendMessage(chatID, msgNoFile, nil)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		if err := b.scans.Forget(ctx, sessionKey(chatID)); err != nil {
			log.Printf("Error forgetting session: %v", err)
		}
		b.sendMessage(chatID, msgStart, nil)

	case "help":
		b.sendMessage(chatID, msgHelp, nil)

	case "analyze":
		b.submit(ctx, chatID)

	case "back":
		b.reset(ctx, chatID)

	default:
		b.sendMessage(chatID, msgUnknownCommand, nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	switch query.Data {
	case callbackAnalyze:
		b.submit(ctx, chatID)
	case callbackBack:
		b.reset(ctx, chatID)
	}
}

func (b *Bot) selectFile(ctx context.Context, chatID int64, fileID, name, contentType string) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgDownloadError, nil)
		return
	}

	file := &entity.SelectedFile{Name: name, ContentType: contentType, Data: data}
	_, err = b.scans.SelectFile(ctx, sessionKey(chatID), file)
	switch {
	case errors.Is(err, entity.ErrSubmitInProgress):
		b.sendMessage(chatID, msgInProgress, nil)
	case err != nil:
		log.Printf("Error selecting file: %v", err)
	default:
		b.sendMessage(chatID, fmt.Sprintf(msgSelected, name), keyboardFor(entity.PhaseIdle))
	}
}

func (b *Bot) submit(ctx context.Context, chatID int64) {
	key := sessionKey(chatID)

	current, err := b.scans.Session(ctx, key)
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return
	}
	if current.Phase == entity.PhaseIdle && current.File != nil {
		b.sendMessage(chatID, msgAnalyzing, nil)
	}

	session, err := b.scans.Submit(ctx, key)
	switch {
	case errors.Is(err, entity.ErrNoFileSelected):
		b.sendMessage(chatID, msgNoFile, nil)
	case errors.Is(err, entity.ErrSubmitInProgress):
		b.sendMessage(chatID, msgInProgress, nil)
	case errors.Is(err, entity.ErrResultShown):
		b.sendMessage(chatID, msgResultShown, keyboardFor(entity.PhaseShowingResult))
	case err != nil:
		log.Printf("Error submitting file: %v", err)
	default:
		b.sendMessage(chatID, fmt.Sprintf(msgInsights, session.Message), keyboardFor(session.Phase))
	}
}

func (b *Bot) reset(ctx context.Context, chatID int64) {
	_, err := b.scans.Reset(ctx, sessionKey(chatID))
	switch {
	case errors.Is(err, entity.ErrNothingToReset):
		b.sendMessage(chatID, msgNothingToReset, nil)
	case err != nil:
		log.Printf("Error resetting session: %v", err)
	default:
		b.sendMessage(chatID, msgReady, nil)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(b.fileEndpoint, b.api.Token, file.FilePath), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение, markup может быть nil
func (b *Bot) sendMessage(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// keyboardFor возвращает кнопку, доступную в фазе.
func keyboardFor(phase entity.Phase) *tgbotapi.InlineKeyboardMarkup {
	var button tgbotapi.InlineKeyboardButton
	switch phase {
	case entity.PhaseIdle:
		button = tgbotapi.NewInlineKeyboardButtonData("Upload & Analyze", callbackAnalyze)
	case entity.PhaseShowingResult:
		button = tgbotapi.NewInlineKeyboardButtonData("Back", callbackBack)
	default:
		return nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))
	return &markup
}

// imageFromMessage достаёт файл изображения: фото с максимальным разрешением
// или документ с MIME-типом image/*.
func imageFromMessage(msg *tgbotapi.Message) (fileID, name, contentType string, ok bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, photo.FileUniqueID + ".jpg", "image/jpeg", true
	}

	if doc := msg.Document; doc != nil && strings.HasPrefix(doc.MimeType, "image/") {
		name := path.Base(doc.FileName)
		if doc.FileName == "" {
			name = doc.FileUniqueID
		}
		return doc.FileID, name, doc.MimeType, true
	}

	return "", "", "", false
}
