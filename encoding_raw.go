// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

// rawPayload builds the Raw encoding payload for region: the pixel bytes of
// the rectangle in dstFormat, row-major, with no padding between rows. This
// is the only encoding the mandatory cache/diff path emits.
func rawPayload(fb *Framebuffer, dstFormat *PixelFormat, region Rectangle) ([]byte, error) {
	fb.SyncRoot.Lock()
	defer fb.SyncRoot.Unlock()

	dstBPP := dstFormat.BytesPerPixel()
	dstStride := int(region.Width) * dstBPP
	dst := make([]byte, dstStride*int(region.Height))

	if err := copyRegionTo(dst, dstStride, dstFormat, 0, 0, fb.Buffer, fb.Stride, &fb.Format, region); err != nil {
		return nil, err
	}
	return dst, nil
}
