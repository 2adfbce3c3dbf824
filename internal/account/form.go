package account

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignupForm はユーザー登録フォームの入力値。
type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150"`
	Password  string `form:"password" validate:"required,max=150"`
	FirstName string `form:"first_name" validate:"required,max=30"`
	LastName  string `form:"last_name" validate:"required,max=30"`
	Email     string `form:"email" validate:"required,max=254,email"`
}

// FieldErrors はフィールド名ごとのエラーメッセージ。
type FieldErrors map[string][]string

// Add はフィールドにエラーメッセージを追加する。
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has はフィールドにエラーがあるかどうかを返す。
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Error はすべてのエラーをフィールド名順に連結する。
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fe[f], " ")))
	}
	return strings.Join(parts, "; ")
}

// Unwrap はFieldErrorsをErrValidationとして扱えるようにする。
func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// UsernameExistsFunc はユーザー名が既に使われているかどうかを返す。
type UsernameExistsFunc func(username string) (bool, error)

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate はフォームの入力値を検証する。
// 検証エラーがない場合は (nil, nil) を返す。existsの呼び出しに失敗した場合はそのエラーを返す。
func (f *SignupForm) Validate(exists UsernameExistsFunc) (FieldErrors, error) {
	errs := FieldErrors{}

	if err := formValidator.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("フォームの検証に失敗: %w", err)
		}
		for _, fe := range verrs {
			errs.Add(formFieldName(fe.StructField()), tagMessage(fe))
		}
	}

	if f.Username != "" && !errs.Has("username") {
		if err := ValidateUsername(f.Username); err != nil {
			errs["username"] = append(errs["username"], Messages(err)...)
		}
	}
	if !errs.Has("username") && exists != nil {
		taken, err := exists(f.Username)
		if err != nil {
			return nil, fmt.Errorf("ユーザー名の重複確認に失敗: %w", err)
		}
		if taken {
			errs.Add("username", "このユーザー名は既に使用されています。別のユーザー名を選んでください")
		}
	}

	if f.Password != "" && !errs.Has("password") {
		if err := ValidatePassword(f.Password, f.Attributes()); err != nil {
			errs["password"] = append(errs["password"], Messages(err)...)
		}
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// Attributes はパスワードの類似度検証に使うユーザー属性を返す。
func (f *SignupForm) Attributes() UserAttributes {
	return UserAttributes{
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
}

// LabelInput は必須項目のラベルに * を付けて返す。
func LabelInput(label string, required bool) string {
	if required {
		return label + "*"
	}
	return label
}

var formFieldNames = map[string]string{
	"Username":  "username",
	"Password":  "password",
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Email":     "email",
}

func formFieldName(structField string) string {
	if name, ok := formFieldNames[structField]; ok {
		return name
	}
	return strings.ToLower(structField)
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "この項目は必須です"
	case "max":
		return fmt.Sprintf("%s文字以下で入力してください", fe.Param())
	case "email":
		return "有効なメールアドレスを入力してください"
	default:
		return "入力値が不正です"
	}
}

// Messages はバリデータが返したエラーを利用者向けのメッセージに分解する。
// errors.Joinでまとめられたエラーは個別のメッセージになる。
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var msgs []string
	for _, e := range unwrapJoined(err) {
		if e == nil {
			continue
		}
		msgs = append(msgs, strings.TrimPrefix(e.Error(), ErrValidation.Error()+": "))
	}
	return msgs
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
