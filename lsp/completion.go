package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

var libraryFunctions = []string{
	"printf", "scanf", "malloc", "free", "strlen", "strcpy", "strcmp",
	"strcat", "fopen", "fclose", "fread", "fwrite", "getchar", "putchar",
}

var typeKeywords = []string{
	"int", "char", "float", "double", "void", "long", "short", "unsigned",
	"signed", "const", "static", "extern", "register", "volatile",
}

type snippet struct {
	label, body, detail, doc string
}

var snippets = []snippet{
	{"for", "for (int ${1:i} = 0; ${1:i} < ${2:n}; ${1:i}++) {\n\t${3:// code}\n}", "for loop", "Standard for loop with iterator"},
	{"while", "while (${1:condition}) {\n\t${2:// code}\n}", "while loop", "While loop with condition"},
	{"do-while", "do {\n\t${1:// code}\n} while (${2:condition});", "do-while loop", "Do-while loop"},
	{"if", "if (${1:condition}) {\n\t${2:// code}\n}", "if statement", "If conditional statement"},
	{"if-else", "if (${1:condition}) {\n\t${2:// if code}\n} else {\n\t${3:// else code}\n}", "if-else statement", "If-else conditional statement"},
	{"switch", "switch (${1:variable}) {\n\tcase ${2:value1}:\n\t\t${3:// code}\n\t\tbreak;\n\tcase ${4:value2}:\n\t\t${5:// code}\n\t\tbreak;\n\tdefault:\n\t\t${6:// default code}\n\t\tbreak;\n}", "switch statement", "Switch-case statement"},
	{"function", "${1:int} ${2:functionName}(${3:parameters}) {\n\t${4:// code}\n\treturn ${5:value};\n}", "function definition", "Function definition template"},
	{"main", "int main() {\n\t${1:// code}\n\treturn 0;\n}", "main function", "Main function template"},
	{"printf", "printf(\"${1:format}\", ${2:args});", "printf statement", "Printf function call"},
	{"scanf", "scanf(\"${1:format}\", ${2:&variable});", "scanf statement", "Scanf function call"},
	{"include", "#include <${1:header}>", "include directive", "Include header file"},
	{"struct", "typedef struct {\n\t${1:// members}\n} ${2:StructName};", "struct definition", "Structure definition template"},
}

var (
	completionOnce  sync.Once
	completionCache []protocol.CompletionItem
)

// completionItems returns the static completion list, built on first use.
func completionItems() []protocol.CompletionItem {
	completionOnce.Do(func() {
		plain := protocol.InsertTextFormatPlainText
		snip := protocol.InsertTextFormatSnippet
		fnKind := protocol.CompletionItemKindFunction
		kwKind := protocol.CompletionItemKindKeyword
		snipKind := protocol.CompletionItemKindSnippet

		for _, name := range libraryFunctions {
			detail := "C library function"
			completionCache = append(completionCache, protocol.CompletionItem{
				Label:            name,
				Kind:             &fnKind,
				Detail:           &detail,
				InsertText:       strPtr(name),
				InsertTextFormat: &plain,
			})
		}
		for _, kw := range typeKeywords {
			detail := "C keyword"
			completionCache = append(completionCache, protocol.CompletionItem{
				Label:            kw,
				Kind:             &kwKind,
				Detail:           &detail,
				InsertText:       strPtr(kw),
				InsertTextFormat: &plain,
			})
		}
		for _, s := range snippets {
			completionCache = append(completionCache, protocol.CompletionItem{
				Label:            s.label,
				Kind:             &snipKind,
				Detail:           strPtr(s.detail),
				Documentation:    s.doc,
				InsertText:       strPtr(s.body),
				InsertTextFormat: &snip,
			})
		}
	})
	return completionCache
}

func strPtr(s string) *string {
	return &s
}
