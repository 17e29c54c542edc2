package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestNew はNew関数を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("指定したレベルが設定されること", func(t *testing.T) {
		t.Parallel()

		logger, err := New("gateway", "debug")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debugレベルが有効になっていない")
		}
	})

	t.Run("大文字のレベル名も受け付けること", func(t *testing.T) {
		t.Parallel()

		logger, err := New("auth", "WARN")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("warnレベルでinfoが有効になっている")
		}
		if !logger.Core().Enabled(zapcore.WarnLevel) {
			t.Error("warnレベルが有効になっていない")
		}
	})

	t.Run("不正なレベルの場合はinfoになること", func(t *testing.T) {
		t.Parallel()

		logger, err := New("auth", "verbose")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debugレベルが有効になっている")
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("infoレベルが有効になっていない")
		}
	})
}
