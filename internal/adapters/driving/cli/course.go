package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

var courseImportFrom string

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage the local course",
}

var courseImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Seed the local course from saved Memrise pages",
	Long: `Replaces the local course (course.driver = "sqlite") with the words in a
directory of saved Memrise course pages. Words that carry a stamp are
managed from the next sync on; the others are left alone.

The directory defaults to course.export_dir.`,
	Args: cobra.NoArgs,
	RunE: runCourseImport,
}

func init() {
	courseImportCmd.Flags().StringVar(&courseImportFrom, "from", "",
		"directory of saved course pages (default course.export_dir)")
	courseCmd.AddCommand(courseImportCmd)
	rootCmd.AddCommand(courseCmd)
}

func runCourseImport(cmd *cobra.Command, _ []string) error {
	d, err := requireDeps()
	if err != nil {
		return err
	}
	if d.ImportCourse == nil {
		return errors.New("course import not configured")
	}

	settings, err := loadSettings(d)
	if err != nil {
		return err
	}
	if settings.Course.Driver != domain.CourseDriverSQLite {
		return fmt.Errorf("%w: course import needs course.driver = %q, not %q",
			domain.ErrInvalidInput, domain.CourseDriverSQLite, settings.Course.Driver)
	}
	dir := courseImportFrom
	if dir == "" {
		dir = settings.Course.ExportDir
	}
	if dir == "" {
		return fmt.Errorf("%w: pass --from or set course.export_dir", domain.ErrInvalidInput)
	}

	entries, err := d.ImportCourse(cmd.Context(), settings, dir)
	if err != nil {
		return fmt.Errorf("course import failed: %w", err)
	}

	managed := 0
	for _, e := range entries {
		if e.Managed() {
			managed++
		}
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintf(out, "%s %d entries from %s\n", st.Success("Imported"), len(entries), dir)
	fmt.Fprintf(out, "  %-10s %d\n", "managed", managed)
	fmt.Fprintf(out, "  %-10s %d\n", "unmanaged", len(entries)-managed)
	return nil
}
