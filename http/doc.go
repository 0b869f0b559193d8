// Package http exposes a bucketfs.Filesystem over HTTP.
//
// # Routes
//
//	GET    /*         read an object (Range, If-Match, If-None-Match)
//	PUT    /*         write an object (x-amz-acl, x-amz-meta-*, If-None-Match: *)
//	DELETE /*         delete an object (?versionId=)
//	GET    /_url/*    {"url": ...} public URL (?protocol=, ?cdn=, ?cdn_domain=)
//	GET    /_sign/*   {"url": ...} signed URL (adds ?timeout=, ?signature_only=)
//
// Unknown routes get an HTML 404 page.
//
// # Authentication
//
// Reads and writes can each require a signed query string, as produced by
// bucketfs.Adapter.SignURL. Pass a RequestVerifier, or nil for public access:
//
//	store := keybackend.NewStore(map[string]string{
//	    "BKIAJCQJZKAWSTNVBHUJ": "TRDMBTZ1...",
//	})
//	verifier := bucketfs.NewSignatureVerifier("my-bucket", store)
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    ReadVerifier:  nil,      // public read
//	    WriteVerifier: verifier, // signed write
//	}, fs)
//	stdhttp.ListenAndServe(":5708", handler.Router())
//
// PUT, DELETE and /_sign are guarded by the write verifier. GET and /_url
// are guarded by the read verifier. The signature always covers the object
// key, never the route prefix.
//
// # Errors
//
// Errors are JSON bodies of the form {"error": code, "message": text}:
//
//	bucketfs.ErrNotFound            404 not_found
//	bucketfs.ErrBucketNotFound      404 bucket_not_found
//	bucketfs.ErrObjectAlreadyExists 409 already_exists
//	bucketfs.ErrPreconditionFailed  412 precondition_failed
//	bucketfs.ErrMissingCDNDomain    400 missing_cdn_domain
//	bucketfs.ErrInvalidInput        400 invalid_input
//	bucketfs.ErrUnauthorized        403 unauthorized
//
// bucketfs.ErrNotModified is answered with a bare 304.
package http
