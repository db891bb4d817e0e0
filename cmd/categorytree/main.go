// categorytree arma el árbol de categorías desde un archivo exportado o desde la API externa.
//
// Uso:
//
//	categorytree tree --input categorias.json
//	categorytree options --input legado.csv --charset latin1 --exclude 12
//	categorytree tree --remote --company <uuid>
//	categorytree token --user <uuid> --company <uuid> --role admin
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-categorias/internal/application/usecase"
	"github.com/jhoicas/erp-categorias/internal/domain/entity"
	"github.com/jhoicas/erp-categorias/internal/domain/repository"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/csvsource"
	"github.com/jhoicas/erp-categorias/internal/infrastructure/upstream"
	"github.com/jhoicas/erp-categorias/pkg/config"
	"github.com/jhoicas/erp-categorias/pkg/jwt"
	"github.com/jhoicas/erp-categorias/pkg/logger"
)

// localCompany empresa ficticia con la que se leen los archivos locales.
const localCompany = "local"

type sourceFlags struct {
	input   string
	charset string
	remote  bool
	company string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "categorytree",
		Short:         "Construye el árbol de categorías del ERP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.AddCommand(newTreeCmd(), newOptionsCmd(), newTokenCmd())
	return root
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "archivo .json o .csv con la lista plana (\"-\" = JSON por stdin)")
	cmd.Flags().StringVar(&f.charset, "charset", "utf-8", "codificación del CSV: utf-8, latin1, windows-1252")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "leer desde la API externa configurada (UPSTREAM_BASE_URL)")
	cmd.Flags().StringVar(&f.company, "company", "", "empresa a consultar con --remote")
	cmd.MarkFlagsMutuallyExclusive("input", "remote")
	cmd.MarkFlagsOneRequired("input", "remote")
}

func newTreeCmd() *cobra.Command {
	var f sourceFlags
	cmd := &cobra.Command{
		Use:     "tree",
		Short:   "Imprime el árbol completo con todos los campos",
		Example: "categorytree tree --input categorias.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, company, err := f.useCase(cmd)
			if err != nil {
				return err
			}
			tree, err := uc.Tree(cmd.Context(), company)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tree.Items)
		},
	}
	addSourceFlags(cmd, &f)
	return cmd
}

func newOptionsCmd() *cobra.Command {
	var (
		f       sourceFlags
		exclude string
	)
	cmd := &cobra.Command{
		Use:     "options",
		Short:   "Imprime las opciones {title, value, children} del selector de categoría padre",
		Example: "categorytree options --input categorias.json --exclude 12",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, company, err := f.useCase(cmd)
			if err != nil {
				return err
			}
			opts, err := uc.Options(cmd.Context(), company, exclude)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), opts.Items)
		},
	}
	addSourceFlags(cmd, &f)
	cmd.Flags().StringVar(&exclude, "exclude", "", "ID de la categoría en edición (solo ese nodo se omite)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID, companyID, role string
		minutes                 int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de desarrollo firmado con JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, companyID, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario")
	cmd.Flags().StringVar(&companyID, "company", "", "ID de la empresa")
	cmd.Flags().StringVar(&role, "role", "admin", "rol: admin, bodeguero o vendedor")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

// useCase arma el caso de uso sobre la fuente elegida. Los comandos solo leen; el writer queda nil.
func (f *sourceFlags) useCase(cmd *cobra.Command) (*usecase.CategoryUseCase, string, error) {
	if f.remote {
		if f.company == "" {
			return nil, "", fmt.Errorf("--company es obligatorio con --remote")
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, "", err
		}
		if cfg.Upstream.BaseURL == "" {
			return nil, "", fmt.Errorf("UPSTREAM_BASE_URL no configurado")
		}
		log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})
		client := upstream.NewCategoryClient(upstream.Config{
			BaseURL:       cfg.Upstream.BaseURL,
			Token:         cfg.Upstream.Token,
			Timeout:       cfg.Upstream.Timeout,
			RatePerSecond: cfg.Upstream.RatePerSecond,
			Burst:         cfg.Upstream.Burst,
			Retries:       cfg.Upstream.Retries,
		}, log.Zerolog())
		return usecase.NewCategoryUseCase(client, nil, nil), f.company, nil
	}

	list, err := f.load(cmd.InOrStdin())
	if err != nil {
		return nil, "", err
	}
	return usecase.NewCategoryUseCase(staticReader(list), nil, nil), localCompany, nil
}

func (f *sourceFlags) load(stdin io.Reader) ([]entity.Category, error) {
	if f.input == "-" {
		return upstream.DecodeCategories(stdin)
	}
	file, err := os.Open(f.input)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", f.input, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(f.input)) {
	case ".csv":
		return csvsource.Read(file, f.charset)
	case ".json":
		return upstream.DecodeCategories(file)
	default:
		return nil, fmt.Errorf("extensión no soportada: %s (.json o .csv)", f.input)
	}
}

// staticReader expone una lista ya cargada como CategoryReader de una única empresa.
type staticReader []entity.Category

var _ repository.CategoryReader = staticReader(nil)

func (s staticReader) ListByCompany(context.Context, string) ([]entity.Category, error) {
	out := make([]entity.Category, len(s))
	copy(out, s)
	return out, nil
}

func (s staticReader) GetByID(_ context.Context, _ string, id string) (*entity.Category, error) {
	for _, c := range s {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
