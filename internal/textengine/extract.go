package textengine

import (
	"fmt"
	"os"
	"sort"

	"rvpacker/internal/game"
	"rvpacker/internal/gamedata"
	"rvpacker/internal/marshal"
	"rvpacker/internal/metadata"
)

// visitor inspects one piece of translatable text and optionally supplies a
// replacement to store back into the document.
type visitor func(text string) (string, bool)

// extractAll parses every source document and collects its translatable
// text per category, applying trim/romanize/quirks processing and the
// duplicate policy.
func (e *Engine) extractAll(req Request, sources []sourceFile) (map[gamedata.FileType][]string, error) {
	result := make(map[gamedata.FileType][]string)
	seen := make(map[gamedata.FileType]map[string]struct{})
	for _, category := range categoryOrder {
		if req.Config.Files.Has(category.Flag()) {
			result[category] = []string{}
			seen[category] = make(map[string]struct{})
		}
	}

	for _, src := range sources {
		root, err := parseDocument(src.path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.name, err)
		}

		collect := func(raw string) (string, bool) {
			processed, _, ok := processText(raw, req.Config, req.GameType)
			if !ok {
				return "", false
			}
			if req.Config.DuplicateMode == gamedata.DuplicateRemove {
				if _, dup := seen[src.category][processed]; dup {
					return "", false
				}
				seen[src.category][processed] = struct{}{}
			}
			result[src.category] = append(result[src.category], processed)
			return "", false
		}

		walkDocument(src, root, walkOptions{
			skipEvents: skipEventSet(req.Config, src.category),
			mapEvents:  req.Config.MapEvents,
			termina:    req.GameType == game.Termina,
		}, collect)
	}

	return result, nil
}

// parseDocument loads a JSON document preserving integer values, so legacy
// representations re-encode to fixnums rather than floats.
func parseDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return marshal.FromJSON(data)
}

func skipEventSet(cfg metadata.RunConfiguration, category gamedata.FileType) map[uint16]struct{} {
	var set map[uint16]struct{}
	for _, er := range cfg.SkipEvents {
		if er.File != category {
			continue
		}
		if set == nil {
			set = make(map[uint16]struct{})
		}
		for _, idx := range er.Indices {
			set[idx] = struct{}{}
		}
	}
	return set
}

type walkOptions struct {
	// skipEvents holds the event indices excluded for this document's
	// category. It has no effect on map events.
	skipEvents map[uint16]struct{}
	mapEvents  bool
	termina    bool
}

// walkDocument dispatches to the walker for the document's category. The
// same walkers serve extraction and reinsertion: the visitor decides
// whether text is collected or replaced.
func walkDocument(src sourceFile, root any, opts walkOptions, visit visitor) {
	switch src.category {
	case gamedata.FileMap:
		walkMap(root, opts, visit)
	case gamedata.FileSystem:
		walkSystem(root, visit)
	case gamedata.FileCommonEvents:
		walkCommonEvents(root, opts, visit)
	case gamedata.FileTroops:
		walkTroops(root, opts, visit)
	default:
		walkObjectList(root, visit)
	}
}

// objectTextFields lists the text-bearing attributes of database objects,
// in visit order. Each entry names the MV/MZ field and its legacy ivar.
var objectTextFields = [][]string{
	{"name", "@name"},
	{"nickname", "@nickname"},
	{"description", "@description"},
	{"note", "@note"},
	{"profile", "@profile"},
	{"message1", "@message1"},
	{"message2", "@message2"},
	{"message3", "@message3"},
	{"message4", "@message4"},
}

func walkObjectList(root any, visit visitor) {
	list, ok := root.([]any)
	if !ok {
		return
	}
	for _, element := range list {
		obj, ok := element.(map[string]any)
		if !ok {
			continue
		}
		for _, names := range objectTextFields {
			visitField(obj, visit, names...)
		}
	}
}

func walkSystem(root any, visit visitor) {
	m, ok := root.(map[string]any)
	if !ok {
		return
	}
	visitField(m, visit, "gameTitle", "@game_title")
	visitField(m, visit, "currencyUnit", "@currency_unit")
	for _, key := range []string{
		"elements", "@elements",
		"skillTypes", "@skill_types",
		"weaponTypes", "@weapon_types",
		"armorTypes", "@armor_types",
	} {
		if arr, ok := m[key].([]any); ok {
			for i := range arr {
				visitIndex(arr, i, visit)
			}
		}
	}
	for _, key := range []string{"terms", "@terms", "words", "@words"} {
		if sub, ok := m[key]; ok {
			visitStringsDeep(sub, visit)
		}
	}
}

func walkCommonEvents(root any, opts walkOptions, visit visitor) {
	list, ok := root.([]any)
	if !ok {
		return
	}
	for i, element := range list {
		if skipIndex(opts.skipEvents, i) {
			continue
		}
		event, ok := element.(map[string]any)
		if !ok {
			continue
		}
		if commands, ok := fieldValue(event, "list", "@list").([]any); ok {
			walkEventCommands(commands, visit)
		}
	}
}

func walkTroops(root any, opts walkOptions, visit visitor) {
	list, ok := root.([]any)
	if !ok {
		return
	}
	for i, element := range list {
		if skipIndex(opts.skipEvents, i) {
			continue
		}
		troop, ok := element.(map[string]any)
		if !ok {
			continue
		}
		visitField(troop, visit, "name", "@name")
		walkPages(troop, visit)
	}
}

func walkMap(root any, opts walkOptions, visit visitor) {
	m, ok := root.(map[string]any)
	if !ok {
		return
	}
	// Termina stores untranslatable internal ids in display names.
	if !opts.termina {
		visitField(m, visit, "displayName", "@display_name")
	}

	events := fieldValue(m, "events", "@events")
	switch ev := events.(type) {
	case []any:
		for _, element := range ev {
			walkMapEvent(element, opts, visit)
		}
	case map[string]any:
		keys := make([]string, 0, len(ev))
		for key := range ev {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			walkMapEvent(ev[key], opts, visit)
		}
	}
}

func walkMapEvent(element any, opts walkOptions, visit visitor) {
	event, ok := element.(map[string]any)
	if !ok {
		return
	}
	if opts.mapEvents {
		visitField(event, visit, "name", "@name")
	}
	walkPages(event, visit)
}

func walkPages(obj map[string]any, visit visitor) {
	pages, ok := fieldValue(obj, "pages", "@pages").([]any)
	if !ok {
		return
	}
	for _, element := range pages {
		page, ok := element.(map[string]any)
		if !ok {
			continue
		}
		if commands, ok := fieldValue(page, "list", "@list").([]any); ok {
			walkEventCommands(commands, visit)
		}
	}
}

// Event command codes carrying translatable text.
const (
	codeShowText      = 401
	codeScrollingText = 405
	codeShowChoices   = 102
	codeChoiceBranch  = 402
)

func walkEventCommands(commands []any, visit visitor) {
	for _, element := range commands {
		cmd, ok := element.(map[string]any)
		if !ok {
			continue
		}
		code, ok := intValue(fieldValue(cmd, "code", "@code"))
		if !ok {
			continue
		}
		params, ok := fieldValue(cmd, "parameters", "@parameters").([]any)
		if !ok {
			continue
		}
		switch code {
		case codeShowText, codeScrollingText:
			if len(params) > 0 {
				visitIndex(params, 0, visit)
			}
		case codeShowChoices:
			if len(params) > 0 {
				if choices, ok := params[0].([]any); ok {
					for i := range choices {
						visitIndex(choices, i, visit)
					}
				}
			}
		case codeChoiceBranch:
			if len(params) > 1 {
				visitIndex(params, 1, visit)
			}
		}
	}
}

// fieldValue returns the value stored under the first present spelling of
// the field name.
func fieldValue(m map[string]any, names ...string) any {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v
		}
	}
	return nil
}

func visitField(m map[string]any, visit visitor, names ...string) {
	for _, name := range names {
		s, ok := m[name].(string)
		if !ok {
			continue
		}
		if replacement, replace := visit(s); replace {
			m[name] = replacement
		}
		return
	}
}

func visitIndex(arr []any, i int, visit visitor) {
	s, ok := arr[i].(string)
	if !ok {
		return
	}
	if replacement, replace := visit(s); replace {
		arr[i] = replacement
	}
}

// visitStringsDeep visits every plain string in a subtree, skipping codec
// bookkeeping keys and symbol strings from legacy representations.
func visitStringsDeep(v any, visit visitor) {
	switch node := v.(type) {
	case []any:
		for i, element := range node {
			if _, ok := element.(string); ok {
				visitIndex(node, i, visit)
				continue
			}
			visitStringsDeep(element, visit)
		}
	case map[string]any:
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == "__class" || key == "__type" || key == "data" {
				continue
			}
			if s, ok := node[key].(string); ok {
				if isSymbol(s) {
					continue
				}
				if replacement, replace := visit(s); replace {
					node[key] = replacement
				}
				continue
			}
			visitStringsDeep(node[key], visit)
		}
	}
}

func isSymbol(s string) bool {
	return len(s) >= len(marshal.SymbolPrefix) && s[:len(marshal.SymbolPrefix)] == marshal.SymbolPrefix
}

func skipIndex(set map[uint16]struct{}, i int) bool {
	if set == nil || i < 0 || i > int(^uint16(0)) {
		return false
	}
	_, skip := set[uint16(i)]
	return skip
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
