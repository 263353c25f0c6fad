package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Spencerx/pesign-obs-integration/internal/certsub"
	"github.com/Spencerx/pesign-obs-integration/internal/loader"
	"github.com/Spencerx/pesign-obs-integration/internal/materialize"
	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/pkgset"
	"github.com/Spencerx/pesign-obs-integration/internal/query"
	"github.com/Spencerx/pesign-obs-integration/internal/specfile"
	"github.com/Spencerx/pesign-obs-integration/internal/utils"
	"github.com/sirupsen/logrus"
)

// SpecfileName is the generated build recipe; it doubles as the dummy source
// of no-source packages.
const SpecfileName = "repackage.spec"

func runGeneration(ctx context.Context, config *models.Config) error {
	if info, err := os.Stat(config.PayloadDir); err != nil || !info.IsDir() {
		return models.Errorf(models.ErrInput, "", "payload-dir %q is not a directory", config.PayloadDir)
	}
	if err := utils.EnsureDir(config.OutputDir); err != nil {
		return models.Errorf(models.ErrFileOp, "", "create output directory: %v", err)
	}

	codec, err := materialize.LookupCodec(config.Compression)
	if err != nil {
		return err
	}

	var runner query.Runner = query.NewRPMRunner(config.MacroFile)
	if config.FromHeaders {
		if config.MacroFile != "" {
			logrus.Debugf("Ignoring macro file %s: headers are read directly", config.MacroFile)
		}
		runner = query.NewHeaderRunner()
	}

	// Step 1: Load one Package per input, sequentially.
	ld := loader.New(runner)
	var packages []*models.Package
	for _, ref := range config.Packages {
		logrus.Infof("Loading metadata from %s", ref)
		pkg, err := ld.Load(ctx, ref)
		if err != nil {
			return err
		}
		packages = append(packages, pkg)
	}

	// Step 2: Assemble the package set and derive the main package.
	set, err := pkgset.Assemble(packages)
	if err != nil {
		return err
	}
	logrus.Infof("Assembled %d packages, main package %s", len(set.Packages), set.MainName)

	// Step 3: Serialize the specfile, materializing file side effects.
	var certBody string
	if config.CertTemplate != "" {
		if certBody, err = certsub.Render(config.CertTemplate, config.PayloadDir, set.KMPBasename); err != nil {
			return err
		}
	}

	specPath := filepath.Join(config.OutputDir, SpecfileName)
	out, err := os.Create(specPath)
	if err != nil {
		return models.Errorf(models.ErrFileOp, "", "create %s: %v", specPath, err)
	}
	defer out.Close()

	ser := &specfile.Serializer{
		Writer:         specfile.NewWriter(out, config.OutputDir),
		Set:            set,
		Materializer:   materialize.New(config.PayloadDir, codec),
		BuildRoot:      config.PayloadDir,
		CertSubpackage: config.CertTemplate != "",
		CertBody:       certBody,
	}
	if err := ser.Render(); err != nil {
		return err
	}

	// Step 4: Batch-compress the queued kernel modules.
	if err := ser.Materializer.CompressQueued(ctx); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return models.Errorf(models.ErrFileOp, "", "close %s: %v", specPath, err)
	}

	logrus.Info("Specfile generation completed successfully!")
	logrus.Infof("Specfile: %s", specPath)
	return nil
}
