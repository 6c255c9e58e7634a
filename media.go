package nphase

// MediaType is a Content-Type value.
type MediaType string

const (
	ApplicationFormURLEncoded MediaType = "application/x-www-form-urlencoded"
	ApplicationJavascript     MediaType = "application/javascript"
	ApplicationJSON           MediaType = "application/json"
	ApplicationOctetStream    MediaType = "application/octet-stream"
	ApplicationXML            MediaType = "application/xml"
	ApplicationYAML           MediaType = "application/yaml"
	ImageGIF                  MediaType = "image/gif"
	ImageJPEG                 MediaType = "image/jpeg"
	ImagePNG                  MediaType = "image/png"
	MultipartFormData         MediaType = "multipart/form-data"
	TextCSS                   MediaType = "text/css"
	TextCSV                   MediaType = "text/csv"
	TextHTML                  MediaType = "text/html"
	TextPlain                 MediaType = "text/plain"
	TextXML                   MediaType = "text/xml"
)
