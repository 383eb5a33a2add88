// Package server implements the HTTP front end of the photo enhancer.
//
// # Routes
//
//   - GET /: upload form
//   - POST /upload: accept a photo in the multipart field "photo", enhance
//     it and show links to the original and the result
//   - GET /uploads/{filename}: serve a stored original
//   - GET /processed/{filename}: serve a stored result
//   - GET /ping: heartbeat
//
// # Upload Handling
//
// A request without a file, or with an empty file name, is redirected back
// to the form. Names whose extension is not png, jpg, jpeg or gif get a plain
// text error. Accepted uploads are saved under their sanitized name, decoded,
// run through the enhancement pipeline and written to the processed
// directory as "processed_<name>" in the same format.
//
// The response is an HTML page by default. Clients that send
// "Accept: application/json" get the same links and image summaries as JSON.
//
// # Error Handling
//
// Pipeline and codec errors map to status codes:
//   - unsupported content: 415 with the plain text format error
//   - empty or corrupt image data: 422
//   - upload body or declared image size over the limits: 413
//   - request deadline passed: 504, written by the Timeout middleware
//   - pipeline invariant failures and I/O errors: 500, logged
//
// # Concurrency
//
// Enhancement is memory heavy, so the number of pipeline runs in flight is
// capped by Limits.MaxEnhancers. Requests wait for a slot until their
// context is done.
//
// # Usage
//
//	conf, err := server.NewConfigFromFile(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(conf, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = srv.ListenAndServe(ctx)
package server
