package service

import (
	"io"
	"os"
	"testing"

	"github.com/hewor/agency-backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}
