// Package upload implements the editor's upload pipeline.
//
// A Pipeline accepts three kinds of Request:
//
//   - DirectFile, a multipart upload staged on disk by the HTTP layer;
//   - Base64Payload, an inline encoded file such as a scrawl drawing;
//   - RemoteSource, a URL the server downloads itself.
//
// Every request goes through the same steps: presence check, name and
// extension resolution, policy validation (size first, then extension),
// key expansion with the policy's path template and finally a write through
// a storage.Adapter. The first failing step ends the request.
//
// Failures are returned as values, never as Go errors: each Result carries
// the machine-readable state.Code and a State string that is the literal
// "SUCCESS" on success or a localized message otherwise.
//
//	p, err := upload.New(adapter,
//	    upload.WithLogger(log),
//	    upload.WithLocalizer(state.NewLocalizer("en")),
//	)
//	res := p.UploadFile(ctx, &upload.DirectFile{TempPath: tmp, OriginalName: "a.png", Size: n}, table.MustGet(policy.Image))
//
// Catch fetches a batch of URLs concurrently with a bounded number of
// in-flight requests and reports one RemoteResult per URL in input order.
// Remote URLs must use http or https and, unless WithAllowPrivateHosts is
// set, must not point at loopback, private or link-local addresses.
package upload
