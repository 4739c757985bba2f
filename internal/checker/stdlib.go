package checker

// standardGlobals are the global names declared by the default lib files
// and the DOM typings.
var standardGlobals = map[string]SymbolFlags{
	"Array":                 SymInterface | SymVariable,
	"ReadonlyArray":         SymInterface,
	"ArrayLike":             SymInterface,
	"ArrayBuffer":           SymInterface | SymVariable,
	"Awaited":               SymTypeAlias,
	"BigInt":                SymInterface | SymVariable,
	"Boolean":               SymInterface | SymVariable,
	"Capitalize":            SymTypeAlias,
	"ConstructorParameters": SymTypeAlias,
	"DataView":              SymInterface | SymVariable,
	"Date":                  SymInterface | SymVariable,
	"Error":                 SymInterface | SymVariable,
	"EvalError":             SymInterface | SymVariable,
	"Exclude":               SymTypeAlias,
	"Extract":               SymTypeAlias,
	"Float32Array":          SymInterface | SymVariable,
	"Float64Array":          SymInterface | SymVariable,
	"Function":              SymInterface | SymVariable,
	"Generator":             SymInterface,
	"AsyncGenerator":        SymInterface,
	"InstanceType":          SymTypeAlias,
	"Int32Array":            SymInterface | SymVariable,
	"Intl":                  SymNamespace,
	"Iterable":              SymInterface,
	"IterableIterator":      SymInterface,
	"Iterator":              SymInterface,
	"AsyncIterable":         SymInterface,
	"AsyncIterator":         SymInterface,
	"JSON":                  SymInterface | SymVariable,
	"Lowercase":             SymTypeAlias,
	"Map":                   SymInterface | SymVariable,
	"Math":                  SymInterface | SymVariable,
	"NonNullable":           SymTypeAlias,
	"Number":                SymInterface | SymVariable,
	"Object":                SymInterface | SymVariable,
	"Omit":                  SymTypeAlias,
	"Parameters":            SymTypeAlias,
	"Partial":               SymTypeAlias,
	"Pick":                  SymTypeAlias,
	"Promise":               SymInterface | SymVariable,
	"PromiseLike":           SymInterface,
	"PropertyKey":           SymTypeAlias,
	"Proxy":                 SymInterface | SymVariable,
	"RangeError":            SymInterface | SymVariable,
	"Readonly":              SymTypeAlias,
	"ReadonlyMap":           SymInterface,
	"ReadonlySet":           SymInterface,
	"Record":                SymTypeAlias,
	"Reflect":               SymNamespace,
	"RegExp":                SymInterface | SymVariable,
	"Required":              SymTypeAlias,
	"ReturnType":            SymTypeAlias,
	"Set":                   SymInterface | SymVariable,
	"String":                SymInterface | SymVariable,
	"Symbol":                SymInterface | SymVariable,
	"SyntaxError":           SymInterface | SymVariable,
	"TemplateStringsArray":  SymInterface,
	"ThisParameterType":     SymTypeAlias,
	"ThisType":              SymInterface,
	"TypeError":             SymInterface | SymVariable,
	"URIError":              SymInterface | SymVariable,
	"Uint8Array":            SymInterface | SymVariable,
	"Uint16Array":           SymInterface | SymVariable,
	"Uint32Array":           SymInterface | SymVariable,
	"Uncapitalize":          SymTypeAlias,
	"Uppercase":             SymTypeAlias,
	"WeakMap":               SymInterface | SymVariable,
	"WeakRef":               SymInterface | SymVariable,
	"WeakSet":               SymInterface | SymVariable,
	"Infinity":              SymVariable,
	"NaN":                   SymVariable,
	"clearInterval":         SymFunction,
	"clearTimeout":          SymFunction,
	"console":               SymVariable,
	"Console":               SymInterface,
	"decodeURI":             SymFunction,
	"decodeURIComponent":    SymFunction,
	"encodeURI":             SymFunction,
	"encodeURIComponent":    SymFunction,
	"eval":                  SymFunction,
	"fetch":                 SymFunction,
	"globalThis":            SymModule,
	"isFinite":              SymFunction,
	"isNaN":                 SymFunction,
	"parseFloat":            SymFunction,
	"parseInt":              SymFunction,
	"queueMicrotask":        SymFunction,
	"requestAnimationFrame": SymFunction,
	"setInterval":           SymFunction,
	"setTimeout":            SymFunction,
	"structuredClone":       SymFunction,
	"AbortController":       SymInterface | SymVariable,
	"AbortSignal":           SymInterface | SymVariable,
	"Blob":                  SymInterface | SymVariable,
	"CustomEvent":           SymInterface | SymVariable,
	"Document":              SymInterface | SymVariable,
	"DOMException":          SymInterface | SymVariable,
	"Element":               SymInterface | SymVariable,
	"Event":                 SymInterface | SymVariable,
	"EventTarget":           SymInterface | SymVariable,
	"File":                  SymInterface | SymVariable,
	"FormData":              SymInterface | SymVariable,
	"Headers":               SymInterface | SymVariable,
	"HTMLElement":           SymInterface | SymVariable,
	"HTMLInputElement":      SymInterface | SymVariable,
	"HTMLDivElement":        SymInterface | SymVariable,
	"KeyboardEvent":         SymInterface | SymVariable,
	"localStorage":          SymVariable,
	"MouseEvent":            SymInterface | SymVariable,
	"Node":                  SymInterface | SymVariable,
	"Request":               SymInterface | SymVariable,
	"RequestInit":           SymInterface,
	"Response":              SymInterface | SymVariable,
	"Storage":               SymInterface | SymVariable,
	"TextDecoder":           SymInterface | SymVariable,
	"TextEncoder":           SymInterface | SymVariable,
	"URL":                   SymInterface | SymVariable,
	"URLSearchParams":       SymInterface | SymVariable,
	"Window":                SymInterface | SymVariable,
	"document":              SymVariable,
	"window":                SymVariable,
}

// standardValueTypes maps global variables to the interface typing them.
var standardValueTypes = map[string]string{
	"console":      "Console",
	"document":     "Document",
	"window":       "Window",
	"localStorage": "Storage",
}

// ambientExternal maps global namespaces declared by installed typings to
// the package and path they are declared under.
var ambientExternal = map[string][2]string{
	"JSX": {"react", "React.JSX"},
}

func (c *Checker) standardSymbol(name string) *Symbol {
	flags, ok := standardGlobals[name]
	if !ok {
		return nil
	}
	s := c.librarySymbol(OriginStandardLibrary, "", name)
	s.Flags = flags
	return s
}

func (c *Checker) ambientSymbol(name string) *Symbol {
	target, ok := ambientExternal[name]
	if !ok {
		return nil
	}
	s := c.librarySymbol(OriginExternal, target[0], target[1])
	s.Flags = SymNamespace
	return s
}
