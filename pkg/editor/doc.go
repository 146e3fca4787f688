// Package editor is the facade an HTTP layer calls for UEditor requests.
//
// Config is the table the client fetches with the "config" action. It also
// supplies the upload policies and listing roots used by the service, so the
// names, limits and paths the client sees are the ones enforced.
//
// Service.Action maps the client's action names to operations:
//
//	svc, err := editor.NewFromSettings(ctx, settings)
//	if err != nil {
//	    return err
//	}
//	out := svc.Action(ctx, r.URL.Query().Get("action"), editor.Input{
//	    File: &upload.DirectFile{TempPath: tmp, OriginalName: hdr.Filename, Size: hdr.Size},
//	})
//	json.NewEncoder(w).Encode(out)
//
// The request layer owns parsing multipart bodies, staging temp files and
// any JSONP wrapping. Settings selects the storage backend (local, s3 or
// minio) from UEDITOR_* environment variables.
package editor
