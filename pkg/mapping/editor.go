package mapping

import "strings"

// DefaultImageContentType is assumed for image previews without a content-type header.
const DefaultImageContentType = "image/jpeg"

// StripDataURL removes a "data:<mime>;base64," prefix from an uploaded file.
func StripDataURL(s string) string {
	parts := strings.Split(s, ",")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return s
}

// SetImageFromDataURL stores an uploaded image as the form's base64 body.
func (fv *FormValues) SetImageFromDataURL(dataURL string) {
	fv.ResponseBase64Body = StripDataURL(dataURL)
}

// ImageContentType returns the content type to preview the image body with.
func (fv *FormValues) ImageContentType() string {
	for _, h := range fv.ResponseHeaders {
		if strings.EqualFold(h.Key, "content-type") && h.Value != "" {
			return h.Value
		}
	}
	return DefaultImageContentType
}

// SanitizeFolder normalizes a typed folder value; blank input means no folder.
func SanitizeFolder(folder string) string {
	return strings.TrimSpace(folder)
}
