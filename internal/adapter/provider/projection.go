package provider

import "github.com/marmos91/davmount/pkg/remote"

// Project copies the requested fields of md into a wire-facing
// EntryMetadata.
//
// Projection is a strict allow-list: a field appears in the result only
// when its flag in wants is set, and nothing is ever deleted from a built
// record afterwards. Thumbnails are never produced here; thumbnail
// requests are rejected before any metadata exists to project. A directory
// without a MIME type projects no MIME type even when one was requested.
func Project(md remote.Metadata, wants FieldWants) EntryMetadata {
	var out EntryMetadata

	if wants.Name {
		name := md.Name
		out.Name = &name
	}
	if wants.IsDirectory {
		isDir := md.IsDirectory
		out.IsDirectory = &isDir
	}
	if wants.Size {
		size := md.Size
		out.Size = &size
	}
	if wants.ModificationTime {
		modTime := md.ModTime
		out.ModificationTime = &modTime
	}
	if wants.MIMEType && md.MIMEType != "" {
		mime := md.MIMEType
		out.MIMEType = &mime
	}

	return out
}
