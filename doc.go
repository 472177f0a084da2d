// Package docupdate fetches an incremental update for a document, verifies
// it and appends it to the original bytes.
//
// The update is described by the document's metadata dictionary (see
// [ParseDescriptor]). When the descriptor carries an integrity block, the
// update body is authenticated as it streams off the network: the repository
// sends a v4.public token in a response header, and the body itself is the
// token's implicit assertion (see the paseto subpackage). Nothing is written
// to the output until the signature over the whole body has been checked.
//
// # Quick Start
//
//	doc, err := document.OpenFile("report.pdf", document.WithMetadataFile("report.yaml"))
//	if err != nil {
//	    return err
//	}
//	u := docupdate.New(doc, docupdate.WithLogger(logger))
//	if !u.HasAutoUpdate() {
//	    return nil
//	}
//	var out bytes.Buffer
//	if err := u.DownloadUpdate(ctx, &out); err != nil {
//	    return err
//	}
//
// # Trust
//
// A descriptor without an integrity block is trusted unconditionally and the
// update is appended unverified; a warning is logged. A descriptor may also
// pin the SHA-384 (or other OCI digest) of the body with UpdateDigest.
package docupdate
