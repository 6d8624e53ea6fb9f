// Package turbojpeg decodes and encodes JPEG images by delegating the
// pixel codec work to the TurboJPEG 3 API of libjpeg-turbo via cgo.
//
// A Decoder stages the compressed source into native memory once and
// serves header, pixel, metadata and thumbnail requests from it, each
// lazily computed and cached. An Encoder packs a raster into the native
// pixel layout, compresses it, and optionally splices an XMP metadata
// segment into the output stream without re-encoding.
//
// Both types own native resources and must be closed; Close is safe on
// every path, including instances that never made a native call.
package turbojpeg
