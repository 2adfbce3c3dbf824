// Package apidoc はAPIのSwagger 2.0ドキュメントを生成する。
//
// プロジェクトのメタデータは project.toml から読み込み、
// パス定義はGinに登録されたルートから組み立てる。
package apidoc

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ProjectFile は埋め込まれたプロジェクトメタデータのファイル名。
const ProjectFile = "project.toml"

//go:embed project.toml
var ProjectFS embed.FS

// authorPattern は "名前 <メールアドレス>" 形式の作者表記にマッチする。
var authorPattern = regexp.MustCompile(`(.*?) <(.*?)>`)

// Author はプロジェクトの作者。
type Author struct {
	Name  string
	Email string
}

// Project はAPIドキュメントのinfoに使うプロジェクトメタデータ。
type Project struct {
	Name        string
	Version     string
	Description string
	License     string
	Authors     []Author
}

// projectFile は project.toml のデコード先。
type projectFile struct {
	Project struct {
		Name        string   `toml:"name"`
		Version     string   `toml:"version"`
		Description string   `toml:"description"`
		License     string   `toml:"license"`
		Authors     []string `toml:"authors"`
	} `toml:"project"`
}

// LoadProject はfsysからnameのTOMLファイルを読み込み、Projectを返す。
func LoadProject(fsys fs.FS, name string) (Project, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Project{}, fmt.Errorf("%s の読み込みに失敗: %w", name, err)
	}

	var pf projectFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return Project{}, fmt.Errorf("%s のパースに失敗: %w", name, err)
	}
	if pf.Project.Name == "" {
		return Project{}, errors.New("project.name が設定されていません")
	}

	p := Project{
		Name:        pf.Project.Name,
		Version:     pf.Project.Version,
		Description: pf.Project.Description,
		License:     pf.Project.License,
	}
	for _, a := range pf.Project.Authors {
		p.Authors = append(p.Authors, ParseAuthors(a)...)
	}
	return p, nil
}

// ParseAuthors は "名前 <メールアドレス>" 形式の表記をすべて抽出する。
// 形式に合わない部分は無視する。
func ParseAuthors(s string) []Author {
	var authors []Author
	for _, m := range authorPattern.FindAllStringSubmatch(s, -1) {
		authors = append(authors, Author{
			Name:  strings.TrimSpace(strings.TrimLeft(m[1], ` ,"'[`)),
			Email: strings.TrimSpace(m[2]),
		})
	}
	return authors
}
