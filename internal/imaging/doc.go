// Package imaging resolves image sources and prepares them for OCR.
//
// # Sources
//
// Recognition accepts any of the following (see Source):
//   - URL: http or https location, downloaded with a timeout
//   - S3: "s3://bucket/key" object, fetched with the AWS SDK's default
//     credential chain unless a client is supplied (WithS3Client)
//   - Base64: base64 text, optionally a "data:image/...;base64," URI
//   - Blob: encoded image bytes held in memory
//   - Bitmap: an already decoded image.Image
//   - File: a path on local disk
//
// ParseSource classifies string references coming from the CLI or the MCP
// server. Sources are not validated up front; an unreadable or undecodable
// source fails when the Loader prepares it.
//
// # Preprocessing
//
// Tesseract is sensitive to input quality. Preprocess offers region
// cropping, margin trimming (ContentBounds), Lanczos scaling, grayscale, contrast, dark-background inversion
// and binarization. With no steps requested the original bytes reach the
// engine unchanged.
//
// # Coordinate System
//
// All pixel coordinates are 0-based, (0,0) at the top-left:
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive
//   - Prepared.ToSource maps coordinates in a cropped, trimmed or scaled image back
//     to the original
//
// # Thread Safety
//
// Loader and ImageCache are safe for concurrent use.
package imaging
