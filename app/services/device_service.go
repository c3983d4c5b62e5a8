package services

import (
	"strings"

	"github.com/forze-dev/QRHUB-Server/models"
	"github.com/mileusna/useragent"
)

// DeviceInfo is the parsed classification of a scanning client.
type DeviceInfo struct {
	Device  models.DeviceClass
	Browser string
	OS      string
}

// DeviceClassifier parses user-agent strings into a coarse device
// class plus browser and OS names. Parse failures degrade to defaults;
// classification never fails a scan.
type DeviceClassifier interface {
	Classify(userAgent string) DeviceInfo
}

type deviceClassifier struct{}

func NewDeviceClassifier() DeviceClassifier {
	return &deviceClassifier{}
}

func (d *deviceClassifier) Classify(rawUA string) DeviceInfo {
	info := DeviceInfo{
		Device:  models.DeviceOther,
		Browser: "Unknown",
		OS:      "Unknown",
	}
	if strings.TrimSpace(rawUA) == "" {
		return info
	}

	ua := useragent.Parse(rawUA)
	if ua.Name != "" {
		info.Browser = ua.Name
	}
	if ua.OS != "" {
		info.OS = ua.OS
	}

	switch {
	case ua.Mobile || ua.Tablet:
		switch ua.OS {
		case useragent.IOS:
			info.Device = models.DeviceIOS
		case useragent.Android:
			info.Device = models.DeviceAndroid
		default:
			info.Device = models.DeviceOther
		}
	case ua.Desktop:
		// Desktop-mode browsers on phones still report a mobile OS;
		// classify those by OS rather than form factor.
		switch ua.OS {
		case useragent.IOS:
			info.Device = models.DeviceIOS
		case useragent.Android:
			info.Device = models.DeviceAndroid
		default:
			info.Device = models.DeviceDesktop
		}
	default:
		// Smart TVs, consoles, wearables, bots.
		info.Device = models.DeviceOther
	}

	return info
}
