package logging

import "testing"

func TestInitLogger(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, Level(99)}
	formats := []Format{FormatJSON, FormatText}

	for _, level := range levels {
		for _, format := range formats {
			InitLogger(level, format)
			if GetLogger() == nil {
				t.Errorf("logger should not be nil for level=%d format=%d", level, format)
			}
		}
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("debug") != LevelDebug || ParseLevel("WARN") != LevelWarn {
		t.Error("level names not recognized")
	}
	if ParseLevel("bogus") != LevelInfo {
		t.Error("unknown level should default to info")
	}
	if ParseFormat("json") != FormatJSON || ParseFormat("anything") != FormatText {
		t.Error("format names not recognized")
	}
}

func TestHelpersDoNotPanic(t *testing.T) {
	InitLogger(LevelDebug, FormatText)

	Debug("debug message", "key", "value")
	Info("info message")
	Warn("warn message", "count", 3)
	Error("error message")

	BookIngested("0256Bukhari.Sahih-ara1", "صحيح البخاري", 120, 14)
	IngestSkipped("/books/bad.txt", "too short")
	ParseFallback("segmenter", "paragraph chunking")
	SearchExecuted("العلم", "all", 42)
}
