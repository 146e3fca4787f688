package state

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var messages = map[language.Tag]map[Code]string{
	language.Chinese: {
		ErrTmpFile:         "临时文件错误",
		ErrTmpFileNotFound: "找不到临时文件",
		ErrSizeExceed:      "文件大小超出网站限制",
		ErrTypeNotAllowed:  "文件类型不允许",
		ErrCreateDir:       "目录创建失败",
		ErrDirNotWriteable: "目录没有写权限",
		ErrFileMove:        "文件保存时出错",
		ErrFileNotFound:    "找不到上传文件",
		ErrWriteContent:    "写入文件内容错误",
		ErrUnknown:         "未知错误",
		ErrDeadLink:        "链接不可用",
		ErrHTTPLink:        "链接不是http链接",
		ErrHTTPContentType: "链接contentType不正确",
		ErrInvalidURL:      "非法 URL",
		ErrInvalidIP:       "非法 IP",
		ErrInvalidAction:   "请求地址出错",
	},
	language.English: {
		ErrTmpFile:         "Temporary file error",
		ErrTmpFileNotFound: "Temporary file not found",
		ErrSizeExceed:      "File size exceeds the limit",
		ErrTypeNotAllowed:  "File type is not allowed",
		ErrCreateDir:       "Failed to create directory",
		ErrDirNotWriteable: "Directory is not writeable",
		ErrFileMove:        "Failed to save file",
		ErrFileNotFound:    "Uploaded file not found",
		ErrWriteContent:    "Failed to write file content",
		ErrUnknown:         "Unknown error",
		ErrDeadLink:        "Link is unavailable",
		ErrHTTPLink:        "Link is not an http link",
		ErrHTTPContentType: "Link has an invalid content type",
		ErrInvalidURL:      "Invalid URL",
		ErrInvalidIP:       "Invalid IP",
		ErrInvalidAction:   "Invalid request action",
	},
}

// Supported languages. The first entry is the default.
var supported = []language.Tag{language.Chinese, language.English}

var (
	defaultCatalog = buildCatalog()
	matcher        = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(supported[0]))
	for tag, msgs := range messages {
		for code, text := range msgs {
			if err := b.SetString(tag, string(code), text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Localizer renders state codes as human-readable messages.
// It is immutable and safe for concurrent use.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer returns a Localizer for the closest supported language.
// Unknown or empty language strings resolve to Chinese.
func NewLocalizer(lang string) *Localizer {
	requested := language.Make(lang)
	_, idx, conf := matcher.Match(requested)
	tag := supported[idx]
	if requested.IsRoot() || conf == language.No {
		tag = supported[0]
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// Language returns the resolved language tag.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Text returns the message for c. Success is never translated.
func (l *Localizer) Text(c Code) string {
	if c == Success {
		return string(Success)
	}
	if l == nil {
		return string(c)
	}
	return l.printer.Sprintf(string(c))
}

// ErrorText resolves the code carried by err and renders it.
func (l *Localizer) ErrorText(err error) string {
	return l.Text(CodeOf(err))
}
