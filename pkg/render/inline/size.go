package inline

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// intrinsicSize returns an asset's width and height: the viewBox extent
// when both are positive, otherwise the width and height attributes.
func intrinsicSize(root *etree.Element) (w, h float64, ok bool) {
	if vb := root.SelectAttrValue("viewBox", ""); vb != "" {
		fields := strings.FieldsFunc(vb, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		if len(fields) == 4 {
			vw, errW := strconv.ParseFloat(fields[2], 64)
			vh, errH := strconv.ParseFloat(fields[3], 64)
			if errW == nil && errH == nil && vw > 0 && vh > 0 {
				return vw, vh, true
			}
		}
	}

	w, okW := length(root.SelectAttrValue("width", ""))
	h, okH := length(root.SelectAttrValue("height", ""))
	if okW && okH && w > 0 && h > 0 {
		return w, h, true
	}
	return 0, 0, false
}

// length parses a number with an optional unit suffix such as "px" or
// "pt". Percentages are relative to something the asset does not know,
// so they are rejected.
func length(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numberAttr reads a placeholder coordinate, defaulting to 0.
func numberAttr(el *etree.Element, key string) float64 {
	v, ok := length(el.SelectAttrValue(key, ""))
	if !ok {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
