package account

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrValidation は入力値の検証に失敗したことを表す。
var ErrValidation = errors.New("入力値が不正です")

const (
	// MaxUsernameLength はユーザー名の最大文字数。
	MaxUsernameLength = 150
	// MinPasswordLength はパスワードの最小文字数。
	MinPasswordLength = 8
	// MaxPasswordBytes はbcryptでハッシュ化できるパスワードの最大バイト数。
	MaxPasswordBytes = 72
	// MaxSimilarity はパスワードとユーザー属性の類似度の上限。
	MaxSimilarity = 0.7
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	nonWordPattern  = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

//go:embed common_passwords.txt
var commonPasswordsText string

var (
	commonPasswordsOnce sync.Once
	commonPasswords     map[string]struct{}
)

// UserAttributes はパスワードとの類似度を比較するユーザー属性。
type UserAttributes struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

func (a UserAttributes) fields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"ユーザー名", a.Username},
		{"名", a.FirstName},
		{"姓", a.LastName},
		{"メールアドレス", a.Email},
	}
}

// ValidateUsername はユーザー名が文字・数字と @/./+/-/_ のみで構成され、
// 150文字以下であることを検証する。
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength || !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: ユーザー名は%d文字以下で、文字・数字と @/./+/-/_ のみ使用できます", ErrValidation, MaxUsernameLength)
	}
	return nil
}

// ValidatePasswordLength はパスワードが8文字以上であることを検証する。
func ValidatePasswordLength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: パスワードは%d文字以上である必要があります", ErrValidation, MinPasswordLength)
	}
	return nil
}

// ValidatePasswordBytes はパスワードがMaxPasswordBytesバイト以下であることを検証する。
// マルチバイト文字は1文字で複数バイトを使う。
func ValidatePasswordBytes(password string) error {
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: パスワードは%dバイト以下である必要があります", ErrValidation, MaxPasswordBytes)
	}
	return nil
}

// ValidateCommonPassword はパスワードがよく使われるパスワードでないことを検証する。
// 比較は大文字小文字を区別しない。
func ValidateCommonPassword(password string) error {
	commonPasswordsOnce.Do(loadCommonPasswords)
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		return fmt.Errorf("%w: よく使われるパスワードは使用できません", ErrValidation)
	}
	return nil
}

func loadCommonPasswords() {
	commonPasswords = make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonPasswordsText))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commonPasswords[strings.ToLower(line)] = struct{}{}
	}
}

// ValidatePasswordNumeric はパスワードが数字のみで構成されていないことを検証する。
func ValidatePasswordNumeric(password string) error {
	if password == "" {
		return nil
	}
	for _, r := range password {
		if !unicode.IsNumber(r) {
			return nil
		}
	}
	return fmt.Errorf("%w: パスワードを数字だけにすることはできません", ErrValidation)
}

// ValidatePasswordSimilarity はパスワードがユーザー属性に似すぎていないことを検証する。
//
// 各属性とその記号・空白区切りの断片について類似度を計算し、MaxSimilarity以上なら失敗とする。
// パスワードに比べて極端に短い断片は比較しない。
func ValidatePasswordSimilarity(password string, attrs UserAttributes) error {
	lower := strings.ToLower(password)
	for _, f := range attrs.fields() {
		if f.value == "" {
			continue
		}
		value := strings.ToLower(f.value)
		parts := append(nonWordPattern.Split(value, -1), value)
		for _, part := range parts {
			if part == "" || exceedsMaximumLengthRatio(lower, part) {
				continue
			}
			if similarity(lower, part) >= MaxSimilarity {
				return fmt.Errorf("%w: パスワードが%sに似すぎています", ErrValidation, f.name)
			}
		}
	}
	return nil
}

// exceedsMaximumLengthRatio はvalueがパスワードに比べて短すぎ、
// 類似度がMaxSimilarityに達し得ない場合にtrueを返す。
func exceedsMaximumLengthRatio(password, value string) bool {
	pwdLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	bound := MaxSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < bound
}

func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.QuickRatio()
}

// ValidatePassword はパスワードに対してすべての検証を行い、失敗をまとめて返す。
func ValidatePassword(password string, attrs UserAttributes) error {
	return errors.Join(
		ValidatePasswordSimilarity(password, attrs),
		ValidatePasswordLength(password),
		ValidatePasswordBytes(password),
		ValidateCommonPassword(password),
		ValidatePasswordNumeric(password),
	)
}
