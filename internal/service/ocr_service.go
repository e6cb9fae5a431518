package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// OCRService extracts text from receipt attachments. PDFs are read
// directly with go-fitz; images go through the GigaChat Vision API.
type OCRService struct {
	llmService *LLMService
	logger     *zap.Logger
}

func NewOCRService(llmService *LLMService, logger *zap.Logger) *OCRService {
	return &OCRService{
		llmService: llmService,
		logger:     logger,
	}
}

// ExtractText extracts text from an image or PDF file on disk.
// Supported formats: .jpg, .jpeg, .png, .pdf.
func (s *OCRService) ExtractText(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	supportedFormats := []string{".jpg", ".jpeg", ".png", ".pdf"}
	isSupported := false
	for _, format := range supportedFormats {
		if ext == format {
			isSupported = true
			break
		}
	}
	if !isSupported {
		return "", fmt.Errorf("unsupported file format: %s (supported: jpg, jpeg, png, pdf)", ext)
	}

	var text string
	var err error

	if ext == ".pdf" {
		text, err = s.extractTextFromPDF(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from PDF: %w", err)
		}
	} else {
		file, openErr := os.Open(filePath)
		if openErr != nil {
			return "", fmt.Errorf("failed to open image: %w", openErr)
		}
		defer file.Close()

		text, err = s.llmService.ExtractTextFromImage(ctx, file, filepath.Base(filePath))
		if err != nil {
			return "", fmt.Errorf("failed to extract text with GigaChat Vision: %w", err)
		}
	}

	text = strings.TrimSpace(text)

	fileType := "image"
	if ext == ".pdf" {
		fileType = "PDF"
	}

	s.logger.Info("OCR extraction completed",
		zap.String("file", filePath),
		zap.String("type", fileType),
		zap.Int("text_length", len(text)),
	)

	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", fileType)
	}

	return text, nil
}

func (s *OCRService) extractTextFromPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder

	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}

		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text found in PDF")
	}

	return text, nil
}

// ExtractTextFromReader spools the upload to a temp file so the
// path-based extractors can work on it.
func (s *OCRService) ExtractTextFromReader(ctx context.Context, reader io.Reader, contentType string) (string, error) {
	tmpFile, err := os.CreateTemp("", "ocr-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "application/pdf":
		ext = ".pdf"
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	}

	newPath := tmpFile.Name() + ext
	if err := os.Rename(tmpFile.Name(), newPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	defer os.Remove(newPath)

	return s.ExtractText(ctx, newPath)
}
