//go:build !smartbuf_nodebug

package smartbuf

// provenanceCompiled is false when built with the smartbuf_nodebug tag, which
// removes debug record collection regardless of WithDebugInfo.
const provenanceCompiled = true
