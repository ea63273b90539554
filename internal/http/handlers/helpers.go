package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/hewor/agency-backend/internal/http/middleware"
)

var errUserNotFound = errors.New("пользователь не найден в контексте")

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotFound
	}

	return userID, nil
}

// currentUserRole извлекает роль пользователя из контекста.
func currentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", errUserNotFound
	}

	role, ok := raw.(string)
	if !ok {
		return "", errUserNotFound
	}

	return role, nil
}

// Исполняемые форматы, которые нельзя загружать как вложения заказа.
var blockedFileTypes = map[string]bool{
	matchers.TypeElf.MIME.Value: true,
	matchers.TypeExe.MIME.Value: true,
}

// openUpload открывает загруженный файл, проверяет магические байты
// и возвращает reader, готовый к сохранению с начала файла.
func openUpload(file *multipart.FileHeader) (multipart.File, error) {
	if file.Size == 0 {
		return nil, fmt.Errorf("файл не может быть пустым")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл")
	}

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		src.Close()
		return nil, fmt.Errorf("не удалось прочитать файл")
	}

	kind, err := filetype.Match(buffer[:n])
	if err == nil && kind != filetype.Unknown && blockedFileTypes[kind.MIME.Value] {
		src.Close()
		return nil, fmt.Errorf("исполняемые файлы (%s) загружать нельзя", kind.MIME.Value)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, fmt.Errorf("не удалось сбросить позицию файла")
	}

	return src, nil
}
