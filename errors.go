package smartbuf

import "errors"

var (
	// ErrCapacity indicates the arena cannot grow any further. Offsets are
	// 32-bit, so a buffer is limited to MaxSize bytes.
	ErrCapacity = errors.New("smartbuf: buffer capacity exceeded")

	// ErrOutOfRange indicates a write or read at a location the buffer head has
	// not reached yet. Writing there would silently corrupt the arena block.
	ErrOutOfRange = errors.New("smartbuf: location beyond buffer head")

	// ErrForeignLocation indicates a location owned by a different buffer was
	// passed where a location of this buffer is required.
	ErrForeignLocation = errors.New("smartbuf: location belongs to another buffer")

	// ErrNullLocation indicates the zero Location was used where a real one is required.
	ErrNullLocation = errors.New("smartbuf: null location")

	// ErrSizeMismatch indicates a patch whose size differs from the reserved slot.
	ErrSizeMismatch = errors.New("smartbuf: write size does not match reserved size")

	// ErrBadAlignment indicates an alignment that is not a positive power of two.
	ErrBadAlignment = errors.New("smartbuf: alignment must be a power of two")

	// ErrBadPointerWidth indicates a pointer width other than 4, 8 or native.
	ErrBadPointerWidth = errors.New("smartbuf: unsupported pointer width")

	// ErrNotFixup indicates a pointer or offset write to a slot that was not
	// reserved with ReservePointer or ReserveOffset.
	ErrNotFixup = errors.New("smartbuf: location is not a reserved fixup slot")

	// ErrKindMismatch indicates an offset write to a pointer slot or vice versa.
	ErrKindMismatch = errors.New("smartbuf: fixup kind mismatch")

	// ErrDoubleResolve indicates a fixup slot was resolved more than once.
	ErrDoubleResolve = errors.New("smartbuf: fixup resolved twice")

	// ErrUnresolved indicates a fixup that was reserved but never resolved.
	ErrUnresolved = errors.New("smartbuf: unresolved fixup")

	// ErrMissingTarget indicates a fixup whose target buffer is not part of the layout.
	ErrMissingTarget = errors.New("smartbuf: fixup target buffer not in layout")

	// ErrAmbiguousTarget indicates a fixup whose target buffer was placed in the
	// image more than once, so no single address exists for it.
	ErrAmbiguousTarget = errors.New("smartbuf: fixup target buffer placed more than once")

	// ErrOverflow indicates a resolved value that does not fit its slot width.
	ErrOverflow = errors.New("smartbuf: resolved value overflows slot")

	// ErrPlatformMismatch indicates buffers built for different platforms were linked together.
	ErrPlatformMismatch = errors.New("smartbuf: platform mismatch")

	// ErrDuplicateBuffer indicates the same buffer was passed to Link twice.
	ErrDuplicateBuffer = errors.New("smartbuf: buffer listed twice in layout")

	// ErrSelfEmbed indicates a buffer was embedded into itself.
	ErrSelfEmbed = errors.New("smartbuf: buffer embedded into itself")

	// ErrIncomplete is returned by AssertComplete when the buffer size differs
	// from the size of the consumer structure.
	ErrIncomplete = errors.New("smartbuf: buffer size does not match structure size")

	// ErrReleased indicates use of a buffer after Release.
	ErrReleased = errors.New("smartbuf: buffer released")

	// ErrNilBuffer indicates a nil *Buffer was passed.
	ErrNilBuffer = errors.New("smartbuf: nil buffer")

	// ErrUnknownPlatform indicates a platform name ParsePlatform does not know.
	ErrUnknownPlatform = errors.New("smartbuf: unknown platform")

	// ErrNilIO indicates a nil io.Reader/io.Writer was passed.
	ErrNilIO = errors.New("smartbuf: nil io.Reader/io.Writer")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("smartbuf: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("smartbuf: unsupported whence")

	// ErrTruncatedData indicates a read ran past the end of the data.
	ErrTruncatedData = errors.New("smartbuf: truncated data")
)
