package cardlingo

import "strings"

// LanguageNames maps supported target language codes to English names
// used in instruction prompts.
var LanguageNames = map[string]string{
	"pt":    "Portuguese",
	"en":    "English",
	"es":    "Spanish",
	"fr":    "French",
	"de":    "German",
	"it":    "Italian",
	"ja":    "Japanese",
	"zh-cn": "Chinese (Simplified)",
	"ko":    "Korean",
	"ru":    "Russian",
}

// NativeNames maps language codes to their native display names.
var NativeNames = map[string]string{
	"pt":    "Português",
	"en":    "English",
	"es":    "Español",
	"fr":    "Français",
	"de":    "Deutsch",
	"it":    "Italiano",
	"ja":    "日本語",
	"zh-cn": "中文",
	"ko":    "한국어",
	"ru":    "Русский",
}

// placeholderAliases maps localized words that backends sometimes produce
// inside {{...}} braces back to the canonical placeholder name. Keys are
// lower-cased; possessive forms map to the possessive placeholder.
var placeholderAliases = map[string]map[string]string{
	"pt": {
		"usuário": "user", "usuario": "user",
		"personagem": "char", "caractere": "char", "caracter": "char",
		"usuário's": "user's", "usuario's": "user's",
		"personagem's": "char's", "caractere's": "char's", "caracter's": "char's",
	},
	"es": {
		"usuario": "user", "personaje": "char", "caracter": "char",
		"usuario's": "user's", "personaje's": "char's", "caracter's": "char's",
	},
	"fr": {
		"utilisateur": "user", "personnage": "char",
		"caractère": "char", "caractere": "char",
		"utilisateur's": "user's", "personnage's": "char's",
		"caractère's": "char's", "caractere's": "char's",
	},
	"de": {
		"benutzer": "user", "charakter": "char",
		"benutzers": "user's", "charakters": "char's",
	},
	"it": {
		"utente": "user", "personaggio": "char",
		"utente's": "user's", "personaggio's": "char's",
	},
	"ja": {
		"ユーザー": "user", "キャラクター": "char",
		"ユーザーの": "user's", "キャラクターの": "char's",
	},
	"zh-cn": {
		"用户": "user", "角色": "char",
		"用户的": "user's", "角色的": "char's",
	},
	"ko": {
		"사용자": "user", "캐릭터": "char",
		"사용자의": "user's", "캐릭터의": "char's",
	},
	"ru": {
		"пользователь": "user", "персонаж": "char",
		"пользователя": "user's", "персонажа": "char's",
	},
}

// NormalizeLang lower-cases a language code and converts underscores to
// dashes (e.g. "ZH_CN" -> "zh-cn").
func NormalizeLang(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// IsSupported reports whether the language code is a known target.
func IsSupported(code string) bool {
	_, ok := LanguageNames[NormalizeLang(code)]
	return ok
}

// GetLanguageName returns the English name for a language code, falling
// back to the code itself.
func GetLanguageName(code string) string {
	if name, ok := LanguageNames[NormalizeLang(code)]; ok {
		return name
	}
	return code
}

// baseLang extracts the base language code ("pt" from "pt-br").
func baseLang(code string) string {
	return strings.Split(NormalizeLang(code), "-")[0]
}
