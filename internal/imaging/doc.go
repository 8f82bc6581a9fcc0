// Package imaging acquires, cleans up and renders the images that codes are
// read from.
//
// Images come from three sources: local files, HTTP(S) URLs and regions of
// the screen. A Loader handles all three and reads the source again on
// every load.
//
// # Coordinate System
//
// Pixel coordinates use the image's own space with (0,0) at the top-left,
// X increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) is exclusive. OCR boxes use a bottom-left origin and
// must be flipped before they are drawn; see ocr.Box.Rect.
//
// # Rendering
//
// A Viewport fits an image into a canvas without changing its aspect ratio
// and only recomputes the layout when the canvas moves past a resize
// threshold. RenderOverlay draws the image into that layout, optionally
// dimmed, with labelled character boxes on top, and returns a base64 PNG.
package imaging
