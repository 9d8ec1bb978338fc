package smartbuf

import "fmt"

// AddBuffer copies child's bytes to the head of b and returns where the copy
// starts. The caller pads for alignment first if the consumer needs it.
//
// With includeFixups the child's fixups are rehomed into b, their source
// offsets rebased by the insertion point; fixups of b or the child that point
// into the child are retargeted at the copy. Either way b remembers where the
// copy lives, so fixups elsewhere that target the child still resolve through
// b at link time.
//
// The child is not modified and may be embedded into several parents.
func (b *Buffer) AddBuffer(child *Buffer, includeFixups bool, label ...Label) Location {
	if b.err != nil {
		return Location{}
	}
	switch {
	case child == nil:
		b.fail(ErrNilBuffer)
		return Location{}
	case child == b:
		b.fail(fmt.Errorf("%w: %q", ErrSelfEmbed, b.name))
		return Location{}
	case child.err != nil:
		b.fail(fmt.Errorf("embedding %q: %w", child.name, child.err))
		return Location{}
	case !child.opts.platform.Equal(b.opts.platform):
		b.fail(fmt.Errorf("%w: embedding %s buffer %q into %s buffer",
			ErrPlatformMismatch, child.opts.platform, child.name, b.opts.platform))
		return Location{}
	}

	size := child.arena.len()
	if err := b.retargetable(child, size, includeFixups); err != nil {
		b.fail(err)
		return Location{}
	}
	off, err := b.arena.reserve(size)
	if err != nil {
		b.fail(err)
		return Location{}
	}
	at := uint32(off)
	for pos, blk := 0, 0; pos < size; blk++ {
		chunk := child.arena.blocks[blk][:min(size-pos, child.arena.blockSize)]
		if err := b.arena.writeAt(off+pos, chunk); err != nil {
			b.fail(err)
			return Location{}
		}
		pos += len(chunk)
	}

	if b.debug != nil {
		b.debug.add(BlockBuffer, at, uint32(size), withDefault(label, child.name))
		b.debug.embed(child.debug, uint64(at))
	}

	// Fixups already in b that point into the child now point at the copy.
	for i := range b.fixups {
		f := &b.fixups[i]
		f.Target = rehome(f.Target, child, b, at)
		f.Base = rehome(f.Base, child, b, at)
	}

	if includeFixups {
		for _, f := range child.fixups {
			f.Source += at
			f.Target = rehome(f.Target, child, b, at)
			f.Base = rehome(f.Base, child, b, at)
			b.register(f)
		}
	}

	b.embeds = append(b.embeds, embedding{child: child, at: at, size: uint32(size)})
	for _, e := range child.embeds {
		b.embeds = append(b.embeds, embedding{child: e.child, at: at + e.at, size: e.size})
	}

	b.opts.logger.Debug("smartbuf: embedded buffer",
		"parent", b.name, "child", child.name, "at", at, "size", size, "fixups", includeFixups)
	return Location{buf: b, off: at}
}

// Rebase maps a location inside child to the copy of child embedded at at.
// Use it to resolve child fixups that were still pending when embedded.
func Rebase(loc Location, at Location) Location {
	if loc.IsNull() || at.IsNull() {
		return Location{}
	}
	return Location{buf: at.buf, off: at.off + loc.off, size: loc.size}
}

// retargetable checks that every fixup about to follow child into b points
// inside the size bytes that get copied. Anything further would land on
// whatever b holds after the copy.
func (b *Buffer) retargetable(child *Buffer, size int, includeFixups bool) error {
	check := func(owner *Buffer, f Fixup) error {
		for _, loc := range [...]Location{f.Target, f.Base} {
			if loc.buf == child && int(loc.off) > size {
				return fmt.Errorf("%w: %q fixup at %#x refers to %s past the %d bytes of %q being embedded",
					ErrOutOfRange, owner.name, f.Source, loc, size, child.name)
			}
		}
		return nil
	}
	for _, f := range b.fixups {
		if err := check(b, f); err != nil {
			return err
		}
	}
	if !includeFixups {
		return nil
	}
	for _, f := range child.fixups {
		if err := check(child, f); err != nil {
			return err
		}
	}
	return nil
}

// rehome moves a location inside from to the copy of from placed at at in to.
func rehome(loc Location, from, to *Buffer, at uint32) Location {
	if loc.buf != from {
		return loc
	}
	return Location{buf: to, off: loc.off + at, size: loc.size}
}

func withDefault(labels []Label, name string) []Label {
	if len(labels) > 0 && labels[0] != nil {
		return labels
	}
	return []Label{Text(name)}
}
