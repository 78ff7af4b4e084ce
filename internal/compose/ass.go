package compose

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/services"
)

// CaptionStyle controls caption appearance and placement.
type CaptionStyle struct {
	FontSize     int
	Color        string
	Font         string
	OutlineColor string
	OutlineWidth float64
	// OffsetY is the distance from the bottom edge to the top of the text.
	OffsetY float64
}

var namedColors = map[string]string{
	"white":   "FFFFFF",
	"black":   "000000",
	"red":     "FF0000",
	"green":   "00FF00",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"magenta": "FF00FF",
	"orange":  "FFA500",
	"gray":    "808080",
	"grey":    "808080",
	"purple":  "800080",
	"pink":    "FFC0CB",
}

// ASSColor converts a colour name or #RRGGBB value to the ASS &HAABBGGRR form.
func ASSColor(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) != 6 {
		return "", fmt.Errorf("unsupported colour %q", value)
	}
	if _, err := strconv.ParseUint(v, 16, 32); err != nil {
		return "", fmt.Errorf("unsupported colour %q", value)
	}
	return "&H00" + strings.ToUpper(v[4:6]+v[2:4]+v[0:2]), nil
}

// splitFont maps names such as "Arial-Bold" to a family plus weight flags.
func splitFont(font string) (family string, bold, italic bool) {
	family = strings.TrimSpace(font)
	for {
		switch {
		case strings.HasSuffix(family, "-Bold"):
			family, bold = strings.TrimSuffix(family, "-Bold"), true
		case strings.HasSuffix(family, "-Italic"):
			family, italic = strings.TrimSuffix(family, "-Italic"), true
		case strings.HasSuffix(family, "-BoldItalic"):
			family, bold, italic = strings.TrimSuffix(family, "-BoldItalic"), true, true
		default:
			if family == "" {
				family = "Arial"
			}
			return family, bold, italic
		}
	}
}

func assFlag(on bool) string {
	if on {
		return "-1"
	}
	return "0"
}

// assTimestamp formats seconds as H:MM:SS.cc.
func assTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

var assTextEscaper = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"{", `\{`,
	"}", `\}`,
	`\n`, "\\\u2060n",
	`\N`, "\\\u2060N",
	`\h`, "\\\u2060h",
)

// BuildASS renders spans as an ASS document sized to canvas. Every span is
// a Dialogue event anchored top-centre at (width/2, height-OffsetY) and
// visible during [Start, End). Overlapping spans are all drawn; later spans
// paint over earlier ones.
func BuildASS(spans []CaptionSpan, style CaptionStyle, canvas Canvas) ([]byte, error) {
	primary, err := ASSColor(style.Color)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "video", "caption style", "subtitles.color", err)
	}
	outline, err := ASSColor(style.OutlineColor)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "video", "caption style", "subtitles.outline_color", err)
	}
	family, bold, italic := splitFont(style.Font)

	var buf bytes.Buffer
	buf.WriteString("[Script Info]\n")
	buf.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&buf, "PlayResX: %d\n", canvas.Width)
	fmt.Fprintf(&buf, "PlayResY: %d\n", canvas.Height)
	buf.WriteString("WrapStyle: 2\n")
	buf.WriteString("ScaledBorderAndShadow: yes\n\n")

	buf.WriteString("[V4+ Styles]\n")
	buf.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&buf, "Style: Caption,%s,%d,%s,%s,%s,&H00000000,%s,%s,0,0,100,100,0,0,1,%s,0,8,0,0,0,1\n\n",
		family, style.FontSize, primary, primary, outline, assFlag(bold), assFlag(italic), ffmpeg.Number(style.OutlineWidth))

	buf.WriteString("[Events]\n")
	buf.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	x := ffmpeg.Number(float64(canvas.Width) / 2)
	y := ffmpeg.Number(float64(canvas.Height) - style.OffsetY)
	for _, span := range spans {
		fmt.Fprintf(&buf, "Dialogue: 0,%s,%s,Caption,,0,0,0,,{\\an8\\pos(%s,%s)}%s\n",
			assTimestamp(span.Start), assTimestamp(span.End), x, y, assTextEscaper.Replace(span.Text))
	}
	return buf.Bytes(), nil
}
