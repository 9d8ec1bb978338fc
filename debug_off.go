//go:build smartbuf_nodebug

package smartbuf

const provenanceCompiled = false
