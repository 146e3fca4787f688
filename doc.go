// Package ueditor is the file backend for the UEditor rich-text editor.
//
// It receives uploads in three shapes, validates them against per-kind size
// and type policies, stores them under templated keys and lists stored files
// by category. The same protocol runs on a local directory, Amazon S3 or
// MinIO.
//
// Packages:
//
//   - pkg/editor: action dispatch and the client-facing editor table
//   - pkg/upload: direct, base64 and remote-fetch upload pipeline
//   - pkg/listing: paged listing of stored images and files
//   - pkg/storage: local, S3 and MinIO storage adapters
//   - pkg/policy: size and extension checks per upload kind
//   - pkg/pathformat: path template expansion
//   - pkg/state: result state codes and their localized text
//   - pkg/config, pkg/logger, pkg/metrics, pkg/async, pkg/requestid: plumbing
//
// Basic usage from an HTTP handler:
//
//	settings, err := editor.LoadSettings()
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc, err := editor.NewFromSettings(ctx, settings)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	http.HandleFunc("/ueditor", func(w http.ResponseWriter, r *http.Request) {
//		out := svc.Action(r.Context(), r.URL.Query().Get("action"), parseInput(r))
//		_ = json.NewEncoder(w).Encode(out)
//	})
//
// Request parsing, temp file staging and JSONP wrapping belong to the caller.
package ueditor
