package llm

import (
	"math"
	"strconv"
	"strings"

	"github.com/jo-hoe/geminiocr/internal/common"
)

// Enabled reports whether a string flag switches its feature on. Only the
// exact value "enable" counts; "true", "Enable" or "1" do not.
func Enabled(flag string) bool {
	return flag == common.FlagEnable
}

// Temperature coerces a numeric-like string. Blank or unparsable values,
// NaN and infinities fall back to common.DefaultTemperature.
func Temperature(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.DefaultTemperature
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return common.DefaultTemperature
	}
	return v
}

// PNGDataURL wraps base64 image data in a data URL tagged image/png.
func PNGDataURL(image string) string {
	return "data:" + common.MimeImagePNG + ";base64," + image
}
