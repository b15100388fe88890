// Package shell は対話型のREPLフロントエンドを提供する。
// コマンドをそのままリポジトリ操作に転送するだけで、独自の検証は行わない。
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bisoye/docvault/internal/model"
	"github.com/bisoye/docvault/internal/user"
)

// prompt はコマンド入力を促すプロンプト文字列。
const prompt = "docvault> "

// RoleAPI はシェルが転送するロール操作のインターフェース。
type RoleAPI interface {
	AddRole(ctx context.Context, title string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	DropAll(ctx context.Context) error
}

// UserAPI はシェルが転送するユーザー操作のインターフェース。
type UserAPI interface {
	Create(ctx context.Context, first, last, roleTitle string) (user.Status, error)
	GetAll(ctx context.Context) ([]*model.User, error)
	GetOne(ctx context.Context, name string) (*model.User, error)
	DropAll(ctx context.Context) error
}

// DocumentAPI はシェルが転送するドキュメント操作のインターフェース。
type DocumentAPI interface {
	Create(ctx context.Context, content, permittedRole string) (*model.Document, error)
	GetAll(ctx context.Context, limit int) ([]model.DocumentView, error)
	GetAllByRole(ctx context.Context, role string, limit int) ([]model.DocumentView, error)
	GetAllByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error)
	DropAll(ctx context.Context) error
}

// Shell は1行1コマンドの対話型フロントエンド。
type Shell struct {
	roles     RoleAPI
	users     UserAPI
	documents DocumentAPI

	in  io.Reader
	out io.Writer
}

// New は新しいShellを生成する。
func New(roles RoleAPI, users UserAPI, documents DocumentAPI, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		roles:     roles,
		users:     users,
		documents: documents,
		in:        in,
		out:       out,
	}
}

// Run は入力がEOFに達するかexitコマンドが入力されるまでREPLループを回す。
// コマンド実行エラーは出力に表示して継続し、ループ自体は止めない。
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	for {
		fmt.Fprint(s.out, prompt)

		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args := splitArgs(line)
		cmd := args[0]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}

		if err := s.dispatch(ctx, cmd, args[1:]); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// dispatch はコマンド名に応じた操作を実行する。
func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printHelp()
		return nil

	case "addRole":
		if len(args) != 1 {
			return fmt.Errorf("usage: addRole <title>")
		}
		role, err := s.roles.AddRole(ctx, args[0])
		if err != nil {
			return err
		}
		return s.printJSON(role)

	case "getAllRoles":
		if len(args) != 0 {
			return fmt.Errorf("usage: getAllRoles")
		}
		roles, err := s.roles.ListRoles(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(roles)

	case "createUser":
		if len(args) != 3 {
			return fmt.Errorf("usage: createUser <firstname> <lastname> <role>")
		}
		status, err := s.users.Create(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, status)
		return nil

	case "getAllUsers":
		if len(args) != 0 {
			return fmt.Errorf("usage: getAllUsers")
		}
		users, err := s.users.GetAll(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(users)

	case "getOneUser":
		if len(args) != 1 {
			return fmt.Errorf("usage: getOneUser <name>")
		}
		u, err := s.users.GetOne(ctx, args[0])
		if err != nil {
			return err
		}
		if u == nil {
			fmt.Fprintln(s.out, "User not found")
			return nil
		}
		return s.printJSON(u)

	case "createDocument":
		if len(args) != 2 {
			return fmt.Errorf("usage: createDocument <content> <permittedRole>")
		}
		doc, err := s.documents.Create(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return s.printJSON(doc.View())

	case "getAllDocuments":
		limit, err := parseLimit(args, "getAllDocuments [limit]", 0)
		if err != nil {
			return err
		}
		docs, err := s.documents.GetAll(ctx, limit)
		if err != nil {
			return err
		}
		return s.printJSON(docs)

	case "getAllDocumentsByRole":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: getAllDocumentsByRole <role> [limit]")
		}
		limit, err := parseLimit(args, "getAllDocumentsByRole <role> [limit]", 1)
		if err != nil {
			return err
		}
		docs, err := s.documents.GetAllByRole(ctx, args[0], limit)
		if err != nil {
			return err
		}
		return s.printJSON(docs)

	case "getAllDocumentsByDate":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: getAllDocumentsByDate <date> [limit]")
		}
		limit, err := parseLimit(args, "getAllDocumentsByDate <date> [limit]", 1)
		if err != nil {
			return err
		}
		docs, err := s.documents.GetAllByDate(ctx, args[0], limit)
		if err != nil {
			return err
		}
		return s.printJSON(docs)

	case "dropDocument":
		if len(args) != 0 {
			return fmt.Errorf("usage: dropDocument")
		}
		if err := s.documents.DropAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Documents dropped")
		return nil

	case "dropUser":
		if len(args) != 0 {
			return fmt.Errorf("usage: dropUser")
		}
		if err := s.users.DropAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Users dropped")
		return nil

	case "dropRole":
		if len(args) != 0 {
			return fmt.Errorf("usage: dropRole")
		}
		if err := s.roles.DropAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Roles dropped")
		return nil

	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

// parseLimit はコマンド引数の末尾にある省略可能なlimitを解釈する。
// 省略時は負値（無制限）を返す。posは固定引数の個数。
func parseLimit(args []string, usage string, pos int) (int, error) {
	if len(args) <= pos {
		return -1, nil
	}
	limit, err := strconv.Atoi(args[pos])
	if err != nil {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return limit, nil
}

// printJSON は結果をインデント付きJSONで出力する。
func (s *Shell) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("結果の整形に失敗しました: %w", err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}

// printHelp はコマンド一覧を出力する。
func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `commands:
  addRole <title>
  getAllRoles
  createUser <firstname> <lastname> <role>
  getAllUsers
  getOneUser <name>
  createDocument <content> <permittedRole>
  getAllDocuments [limit]
  getAllDocumentsByRole <role> [limit]
  getAllDocumentsByDate <date> [limit]
  dropDocument
  dropUser
  dropRole
  help
  exit
`)
}

// splitArgs は1行を空白区切りで分割する。二重引用符で囲んだ引数は
// 空白を含んだまま1引数として扱う。
func splitArgs(line string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	hasToken := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case r == ' ' || r == '\t':
			if inQuotes {
				current.WriteRune(r)
				continue
			}
			if hasToken {
				args = append(args, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}

	if hasToken {
		args = append(args, current.String())
	}

	return args
}
