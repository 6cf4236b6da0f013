package services

import (
	"os"
	"testing"

	"github.com/pauloheg33/SIEDE/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}
