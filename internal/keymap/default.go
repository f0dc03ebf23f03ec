package keymap

var defaultMapping = map[string]string{
	"type":       "t",
	"name":       "n",
	"file_info":  "fi",
	"structure":  "s",
	"classes":    "cs",
	"methods":    "ms",
	"fields":     "fs",
	"parameters": "ps",

	"modifiers":   "mod",
	"return_type": "rt",

	"control_flow":  "cf",
	"data_flow":     "df",
	"flow_elements": "fe",
	"condition":     "cond",

	"variables":     "vars",
	"usage_summary": "us",
	"declarations":  "decl",
	"reads":         "rd",
	"writes":        "wr",

	"method_analysis":   "ma",
	"complexity":        "cx",
	"max_nesting":       "mn",
	"intent":            "in",
	"complexity_rating": "cr",

	"key_comments": "kc",
	"text":         "txt",

	"package":        "pkg",
	"imports":        "imp",
	"total_lines":    "tl",
	"has_value":      "hv",
	"exception_type": "et",
	"call_count":     "cc",

	"children":        "ch",
	"text_ref":        "tr",
	"text_length":     "tln",
	"symbols":         "sym",
	"ast":             "a",
	"key_variables":   "kv",
	"usage_by_method": "ubm",
	"imports_count":   "ic",
	"type_guessed":    "tg",
	"lines":           "ln",
	"line":            "l",
	"score":           "sc",
	"owner":           "own",
	"extends":         "ext",
	"interfaces":      "ifs",
	"throws":          "thr",
	"responsibility":  "rsp",
	"called_by":       "cb",
	"recursive":       "rec",
	"calls":           "cl",
	"comments":        "cm",
	"then":            "thn",
	"else":            "els",
	"body":            "b",
	"cases":           "cas",
	"catches":         "cat",
	"finally":         "fin",
	"label":           "lbl",
	"expression":      "ex",
	"value_type":      "vt",
	"target":          "tgt",
	"construct":       "con",
	"operator":        "op",
	"value":           "v",
	"object":          "obj",
	"arguments":       "args",
	"count":           "c",
	"code_lines":      "cdl",
	"comment_lines":   "cml",
	"blank_lines":     "bl",
	"items":           "it",
}

var defaultLegend *Legend

func init() {
	l, err := New(defaultMapping)
	if err != nil {
		panic(err)
	}
	defaultLegend = l
}

// Default returns the built-in legend.
func Default() *Legend {
	return defaultLegend
}
