package editor

import (
	"fmt"

	"github.com/dmitrymomot/ueditor/pkg/listing"
	"github.com/dmitrymomot/ueditor/pkg/policy"
)

const (
	mb = 1 << 20

	imagePathFormat = "storage/image/{yyyy}{mm}{dd}/{time}{rand:6}"
	videoPathFormat = "storage/video/{yyyy}{mm}{dd}/{time}{rand:6}"
	filePathFormat  = "storage/file/{yyyy}{mm}{dd}/{time}{rand:6}"
)

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}
	videoExts = []string{
		".flv", ".swf", ".mkv", ".avi", ".rm", ".rmvb", ".mpeg", ".mpg",
		".ogg", ".ogv", ".mov", ".wmv", ".mp4", ".webm", ".mp3", ".wav", ".mid",
	}
	archiveExts  = []string{".rar", ".zip", ".tar", ".gz", ".7z", ".bz2", ".cab", ".iso"}
	documentExts = []string{".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf", ".txt", ".md", ".xml"}
)

// Config is the table the editor client requests with the "config" action.
// Keys match the client's camelCase names in both JSON and YAML.
type Config struct {
	ImageActionName     string   `json:"imageActionName" yaml:"imageActionName"`
	ImageFieldName      string   `json:"imageFieldName" yaml:"imageFieldName"`
	ImageMaxSize        int64    `json:"imageMaxSize" yaml:"imageMaxSize"`
	ImageAllowFiles     []string `json:"imageAllowFiles" yaml:"imageAllowFiles"`
	ImageCompressEnable bool     `json:"imageCompressEnable" yaml:"imageCompressEnable"`
	ImageCompressBorder int      `json:"imageCompressBorder" yaml:"imageCompressBorder"`
	ImageInsertAlign    string   `json:"imageInsertAlign" yaml:"imageInsertAlign"`
	ImageURLPrefix      string   `json:"imageUrlPrefix" yaml:"imageUrlPrefix"`
	ImagePathFormat     string   `json:"imagePathFormat" yaml:"imagePathFormat"`

	ScrawlActionName  string `json:"scrawlActionName" yaml:"scrawlActionName"`
	ScrawlFieldName   string `json:"scrawlFieldName" yaml:"scrawlFieldName"`
	ScrawlPathFormat  string `json:"scrawlPathFormat" yaml:"scrawlPathFormat"`
	ScrawlMaxSize     int64  `json:"scrawlMaxSize" yaml:"scrawlMaxSize"`
	ScrawlURLPrefix   string `json:"scrawlUrlPrefix" yaml:"scrawlUrlPrefix"`
	ScrawlInsertAlign string `json:"scrawlInsertAlign" yaml:"scrawlInsertAlign"`

	SnapscreenActionName  string `json:"snapscreenActionName" yaml:"snapscreenActionName"`
	SnapscreenPathFormat  string `json:"snapscreenPathFormat" yaml:"snapscreenPathFormat"`
	SnapscreenURLPrefix   string `json:"snapscreenUrlPrefix" yaml:"snapscreenUrlPrefix"`
	SnapscreenInsertAlign string `json:"snapscreenInsertAlign" yaml:"snapscreenInsertAlign"`

	CatcherLocalDomain []string `json:"catcherLocalDomain" yaml:"catcherLocalDomain"`
	CatcherActionName  string   `json:"catcherActionName" yaml:"catcherActionName"`
	CatcherFieldName   string   `json:"catcherFieldName" yaml:"catcherFieldName"`
	CatcherPathFormat  string   `json:"catcherPathFormat" yaml:"catcherPathFormat"`
	CatcherURLPrefix   string   `json:"catcherUrlPrefix" yaml:"catcherUrlPrefix"`
	CatcherMaxSize     int64    `json:"catcherMaxSize" yaml:"catcherMaxSize"`
	CatcherAllowFiles  []string `json:"catcherAllowFiles" yaml:"catcherAllowFiles"`

	VideoActionName string   `json:"videoActionName" yaml:"videoActionName"`
	VideoFieldName  string   `json:"videoFieldName" yaml:"videoFieldName"`
	VideoPathFormat string   `json:"videoPathFormat" yaml:"videoPathFormat"`
	VideoURLPrefix  string   `json:"videoUrlPrefix" yaml:"videoUrlPrefix"`
	VideoMaxSize    int64    `json:"videoMaxSize" yaml:"videoMaxSize"`
	VideoAllowFiles []string `json:"videoAllowFiles" yaml:"videoAllowFiles"`

	FileActionName string   `json:"fileActionName" yaml:"fileActionName"`
	FileFieldName  string   `json:"fileFieldName" yaml:"fileFieldName"`
	FilePathFormat string   `json:"filePathFormat" yaml:"filePathFormat"`
	FileURLPrefix  string   `json:"fileUrlPrefix" yaml:"fileUrlPrefix"`
	FileMaxSize    int64    `json:"fileMaxSize" yaml:"fileMaxSize"`
	FileAllowFiles []string `json:"fileAllowFiles" yaml:"fileAllowFiles"`

	ImageManagerActionName  string   `json:"imageManagerActionName" yaml:"imageManagerActionName"`
	ImageManagerListPath    string   `json:"imageManagerListPath" yaml:"imageManagerListPath"`
	ImageManagerListSize    int      `json:"imageManagerListSize" yaml:"imageManagerListSize"`
	ImageManagerURLPrefix   string   `json:"imageManagerUrlPrefix" yaml:"imageManagerUrlPrefix"`
	ImageManagerInsertAlign string   `json:"imageManagerInsertAlign" yaml:"imageManagerInsertAlign"`
	ImageManagerAllowFiles  []string `json:"imageManagerAllowFiles" yaml:"imageManagerAllowFiles"`

	FileManagerActionName string   `json:"fileManagerActionName" yaml:"fileManagerActionName"`
	FileManagerListPath   string   `json:"fileManagerListPath" yaml:"fileManagerListPath"`
	FileManagerURLPrefix  string   `json:"fileManagerUrlPrefix" yaml:"fileManagerUrlPrefix"`
	FileManagerListSize   int      `json:"fileManagerListSize" yaml:"fileManagerListSize"`
	FileManagerAllowFiles []string `json:"fileManagerAllowFiles" yaml:"fileManagerAllowFiles"`
}

// DefaultConfig returns the stock editor table with every URL prefix set to
// urlPrefix. Stored keys are relative, so the prefix is usually the public
// origin of the storage root.
func DefaultConfig(urlPrefix string) Config {
	images := clone(imageExts)
	media := clone(videoExts)
	files := concat(imageExts[:5], videoExts, archiveExts, documentExts)

	return Config{
		ImageActionName:     "uploadimage",
		ImageFieldName:      "upfile",
		ImageMaxSize:        50 * mb,
		ImageAllowFiles:     images,
		ImageCompressEnable: true,
		ImageCompressBorder: 1600,
		ImageInsertAlign:    "none",
		ImageURLPrefix:      urlPrefix,
		ImagePathFormat:     imagePathFormat,

		ScrawlActionName:  "uploadscrawl",
		ScrawlFieldName:   "upfile",
		ScrawlPathFormat:  imagePathFormat,
		ScrawlMaxSize:     50 * mb,
		ScrawlURLPrefix:   urlPrefix,
		ScrawlInsertAlign: "none",

		SnapscreenActionName:  "uploadimage",
		SnapscreenPathFormat:  imagePathFormat,
		SnapscreenURLPrefix:   urlPrefix,
		SnapscreenInsertAlign: "none",

		CatcherLocalDomain: []string{"127.0.0.1", "localhost", "img.baidu.com"},
		CatcherActionName:  "catchimage",
		CatcherFieldName:   "source",
		CatcherPathFormat:  imagePathFormat,
		CatcherURLPrefix:   urlPrefix,
		CatcherMaxSize:     50 * mb,
		CatcherAllowFiles:  clone(imageExts[:5]),

		VideoActionName: "uploadvideo",
		VideoFieldName:  "upfile",
		VideoPathFormat: videoPathFormat,
		VideoURLPrefix:  urlPrefix,
		VideoMaxSize:    200 * mb,
		VideoAllowFiles: media,

		FileActionName: "uploadfile",
		FileFieldName:  "upfile",
		FilePathFormat: filePathFormat,
		FileURLPrefix:  urlPrefix,
		FileMaxSize:    200 * mb,
		FileAllowFiles: files,

		ImageManagerActionName:  "listimage",
		ImageManagerListPath:    "storage/image/",
		ImageManagerListSize:    20,
		ImageManagerURLPrefix:   urlPrefix,
		ImageManagerInsertAlign: "none",
		ImageManagerAllowFiles:  clone(imageExts[:5]),

		FileManagerActionName: "listfile",
		FileManagerListPath:   "storage/file/",
		FileManagerURLPrefix:  urlPrefix,
		FileManagerListSize:   20,
		FileManagerAllowFiles: clone(files),
	}
}

// Policies builds the upload policy table. Scrawl uploads have no type
// restriction.
func (c Config) Policies() (policy.Table, error) {
	t, err := policy.NewTable(
		policy.Config{Kind: policy.Image, PathFormat: c.ImagePathFormat, MaxSize: c.ImageMaxSize, AllowFiles: c.ImageAllowFiles},
		policy.Config{Kind: policy.Scrawl, PathFormat: c.ScrawlPathFormat, MaxSize: c.ScrawlMaxSize},
		policy.Config{Kind: policy.Video, PathFormat: c.VideoPathFormat, MaxSize: c.VideoMaxSize, AllowFiles: c.VideoAllowFiles},
		policy.Config{Kind: policy.File, PathFormat: c.FilePathFormat, MaxSize: c.FileMaxSize, AllowFiles: c.FileAllowFiles},
		policy.Config{Kind: policy.Catcher, PathFormat: c.CatcherPathFormat, MaxSize: c.CatcherMaxSize, AllowFiles: c.CatcherAllowFiles},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

// ListSources returns the listing roots for images and files.
func (c Config) ListSources() map[listing.Category]listing.Source {
	return map[listing.Category]listing.Source{
		listing.Image: {
			Path:       c.ImageManagerListPath,
			AllowFiles: c.ImageManagerAllowFiles,
			PageSize:   c.ImageManagerListSize,
		},
		listing.File: {
			Path:       c.FileManagerListPath,
			AllowFiles: c.FileManagerAllowFiles,
			PageSize:   c.FileManagerListSize,
		},
	}
}

// actions maps every dispatchable action name to its operation.
// Snapscreen shares the image action and is not listed separately.
func (c Config) actions() (map[string]operation, error) {
	names := []struct {
		name string
		op   operation
	}{
		{c.ImageActionName, opUploadImage},
		{c.ScrawlActionName, opUploadScrawl},
		{c.VideoActionName, opUploadVideo},
		{c.FileActionName, opUploadFile},
		{c.CatcherActionName, opCatchImage},
		{c.ImageManagerActionName, opListImage},
		{c.FileManagerActionName, opListFile},
	}

	m := make(map[string]operation, len(names))
	for _, n := range names {
		if n.name == "" || n.name == ConfigAction {
			return nil, fmt.Errorf("%w: invalid action name %q for %s", ErrInvalidConfig, n.name, n.op)
		}
		if prev, ok := m[n.name]; ok {
			return nil, fmt.Errorf("%w: action %q used by %s and %s", ErrInvalidConfig, n.name, prev, n.op)
		}
		m[n.name] = n.op
	}
	return m, nil
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
