package services

import (
	"testing"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/stretchr/testify/assert"
)

func TestDeviceClassify(t *testing.T) {
	classifier := NewDeviceClassifier()

	t.Run("IPhone", func(t *testing.T) {
		info := classifier.Classify("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, models.DeviceIOS, info.Device)
		assert.Equal(t, "iOS", info.OS)
		assert.NotEqual(t, "Unknown", info.Browser)
	})

	t.Run("AndroidPhone", func(t *testing.T) {
		info := classifier.Classify("Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")
		assert.Equal(t, models.DeviceAndroid, info.Device)
		assert.Equal(t, "Android", info.OS)
		assert.Equal(t, "Chrome", info.Browser)
	})

	t.Run("IPad", func(t *testing.T) {
		info := classifier.Classify("Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1")
		assert.Equal(t, models.DeviceIOS, info.Device)
	})

	t.Run("WindowsDesktop", func(t *testing.T) {
		info := classifier.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, models.DeviceDesktop, info.Device)
		assert.Equal(t, "Chrome", info.Browser)
	})

	t.Run("MacDesktop", func(t *testing.T) {
		info := classifier.Classify("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")
		assert.Equal(t, models.DeviceDesktop, info.Device)
	})

	t.Run("Bot", func(t *testing.T) {
		info := classifier.Classify("Googlebot/2.1 (+http://www.google.com/bot.html)")
		assert.Equal(t, models.DeviceOther, info.Device)
	})

	t.Run("EmptyUserAgent", func(t *testing.T) {
		info := classifier.Classify("")
		assert.Equal(t, models.DeviceOther, info.Device)
		assert.Equal(t, "Unknown", info.Browser)
		assert.Equal(t, "Unknown", info.OS)
	})

	t.Run("Garbage", func(t *testing.T) {
		info := classifier.Classify("%%%%not-a-user-agent%%%%")
		assert.Equal(t, models.DeviceOther, info.Device)
	})
}
