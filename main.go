package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/xeptore/scdl/cache"
	"github.com/xeptore/scdl/config"
	"github.com/xeptore/scdl/constant"
	"github.com/xeptore/scdl/log"
	"github.com/xeptore/scdl/redact"
	"github.com/xeptore/scdl/soundcloud"
	"github.com/xeptore/scdl/soundcloud/downloader"
	"github.com/xeptore/scdl/soundcloud/query"
	"github.com/xeptore/scdl/soundcloud/types"
)

func main() {
	logger := log.NewDefault()

	pagingFlags := []cli.Flag{
		//nolint:exhaustruct
		&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: 10},
		//nolint:exhaustruct
		&cli.IntFlag{Name: "offset", Usage: "Number of results to skip"},
	}
	protocolFlag := &cli.StringFlag{ //nolint:exhaustruct
		Name:  "protocol",
		Usage: "Preferred stream protocol: progressive or hls",
		Value: string(types.ProtocolProgressive),
	}

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "scdl",
		Version: constant.Version,
		Metadata: map[string]any{
			"compiled_at": constant.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "SoundCloud web API client and downloader",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:  "client-id",
				Usage: "Discover the current public client id",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{Name: "reveal", Usage: "Print the client id unredacted"},
				},
				Action: clientID,
			},
			{
				Name:  "search",
				Usage: "Search the catalog",
				Commands: []*cli.Command{
					//nolint:exhaustruct
					{Name: "tracks", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchTracks},
					{Name: "users", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchUsers},
					{Name: "playlists", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchPlaylists},
					{Name: "albums", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchAlbums},
					{Name: "queries", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchQueries},
					{Name: "all", ArgsUsage: "<query>", Flags: pagingFlags, Action: searchAll},
				},
			},
			//nolint:exhaustruct
			{Name: "track", Usage: "Show a track", ArgsUsage: "<id|urn>", Action: showTrack},
			//nolint:exhaustruct
			{Name: "user", Usage: "Show a user", ArgsUsage: "<id|urn>", Action: showUser},
			//nolint:exhaustruct
			{Name: "playlist", Usage: "Show a playlist", ArgsUsage: "<id|urn>", Action: showPlaylist},
			//nolint:exhaustruct
			{
				Name:      "stream-url",
				Usage:     "Resolve the signed stream URL of a track",
				ArgsUsage: "<id|urn>",
				Flags:     []cli.Flag{protocolFlag},
				Action:    streamURL,
			},
			//nolint:exhaustruct
			{Name: "waveform", Usage: "Show the waveform summary of a track", ArgsUsage: "<id|urn>", Action: waveform},
			{
				Name:  "download",
				Usage: "Download audio",
				Commands: []*cli.Command{
					//nolint:exhaustruct
					{
						Name:      "track",
						ArgsUsage: "<id|urn>",
						Flags: []cli.Flag{
							protocolFlag,
							//nolint:exhaustruct
							&cli.BoolFlag{Name: "pick", Usage: "Choose the transcoding interactively"},
						},
						Action: downloadTrack,
					},
					//nolint:exhaustruct
					{
						Name:      "playlist",
						ArgsUsage: "<id|urn>",
						Flags: []cli.Flag{
							protocolFlag,
							//nolint:exhaustruct
							&cli.StringFlag{Name: "dir", Usage: "Directory name, defaults to the playlist title"},
						},
						Action: downloadPlaylist,
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

func setup(cmd *cli.Command) (zerolog.Logger, *config.Config, error) {
	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return logger, nil, fmt.Errorf("load .env file: %v", err)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		return logger, nil, fmt.Errorf("load config: %v", err)
	}

	logger = log.FromConfig(conf.Log)
	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	return logger, conf, nil
}

func newClient(ctx context.Context, logger zerolog.Logger, conf *config.Config) (*soundcloud.Client, error) {
	c, err := soundcloud.NewClient(ctx, logger, conf.SoundCloud, soundcloud.WithRegisterer(prometheus.NewRegistry()))
	if nil != err {
		return nil, fmt.Errorf("create soundcloud client: %w", err)
	}
	logger.Debug().Str("client_id", redact.String(c.ClientID())).Msg("SoundCloud client created")

	return c, nil
}

// run wires signal handling, configuration and the client for actions.
func run(
	f func(ctx context.Context, logger zerolog.Logger, conf *config.Config, c *soundcloud.Client, cmd *cli.Command) error,
) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger, conf, err := setup(cmd)
		if nil != err {
			return err
		}

		c, err := newClient(ctx, logger, conf)
		if nil != err {
			return err
		}

		return f(ctx, logger, conf, c, cmd)
	}
}

func identifierArg(cmd *cli.Command) (types.Identifier, error) {
	if cmd.Args().Len() != 1 {
		return types.Identifier{}, fmt.Errorf("expected exactly one <id|urn> argument, got %d", cmd.Args().Len())
	}

	id, err := types.ParseIdentifier(cmd.Args().First())
	if nil != err {
		return types.Identifier{}, fmt.Errorf("invalid identifier: %v", err)
	}

	return id, nil
}

func queryArg(cmd *cli.Command) (*string, *query.Paging, error) {
	if cmd.Args().Len() == 0 {
		return nil, nil, errors.New("missing <query> argument")
	}

	q := cmd.Args().First()
	for _, a := range cmd.Args().Tail() {
		q += " " + a
	}

	paging := &query.Paging{
		Limit:              lo.ToPtr(uint(max(cmd.Int("limit"), 1))),
		Offset:             nil,
		LinkedPartitioning: lo.ToPtr(true),
	}
	if offset := cmd.Int("offset"); offset > 0 {
		paging.Offset = lo.ToPtr(uint(offset))
	}

	return &q, paging, nil
}

func protocolFlagValue(cmd *cli.Command) (types.Protocol, error) {
	p := types.Protocol(cmd.String("protocol"))
	if !p.Valid() {
		return "", fmt.Errorf("invalid protocol %q, expected progressive or hls", p)
	}

	return p, nil
}

func clientID(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}
	conf.SoundCloud.ClientID = ""

	c, err := newClient(ctx, logger, conf)
	if nil != err {
		return err
	}

	id := c.ClientID()
	if !cmd.Bool("reveal") {
		id = redact.String(id)
	}
	fmt.Fprintln(os.Stdout, id)

	return nil
}

var searchTracks = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	//nolint:exhaustruct
	res, err := c.SearchTracks(ctx, logger, &query.TracksQuery{Q: q, Paging: paging})
	if nil != err {
		return fmt.Errorf("search tracks: %w", err)
	}
	renderTracks(os.Stdout, res.Collection)

	return nil
})

var searchUsers = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	res, err := c.SearchUsers(ctx, logger, &query.UsersQuery{Q: q, IDs: nil, URNs: nil, Paging: paging})
	if nil != err {
		return fmt.Errorf("search users: %w", err)
	}
	renderUsers(os.Stdout, res.Collection)

	return nil
})

var searchPlaylists = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	res, err := c.SearchPlaylists(ctx, logger, &query.PlaylistsQuery{Q: q, Access: nil, ShowTracks: nil, Paging: paging})
	if nil != err {
		return fmt.Errorf("search playlists: %w", err)
	}
	renderPlaylists(os.Stdout, res.Collection)

	return nil
})

var searchAlbums = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	res, err := c.SearchAlbums(ctx, logger, &query.SearchQuery{Q: q, Paging: paging})
	if nil != err {
		return fmt.Errorf("search albums: %w", err)
	}
	renderPlaylists(os.Stdout, res.Collection)

	return nil
})

var searchQueries = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	res, err := c.SearchResults(ctx, logger, &query.SearchQuery{Q: q, Paging: paging})
	if nil != err {
		return fmt.Errorf("search queries: %w", err)
	}
	renderSuggestions(os.Stdout, res.Collection)

	return nil
})

var searchAll = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	q, paging, err := queryArg(cmd)
	if nil != err {
		return err
	}

	res, err := c.SearchAll(ctx, logger, &query.SearchQuery{Q: q, Paging: paging})
	if nil != err {
		return fmt.Errorf("search: %w", err)
	}
	renderSearchItems(os.Stdout, res.Collection)

	return nil
})

var showTrack = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	track, err := c.Track(ctx, logger, id)
	if nil != err {
		return fmt.Errorf("get track: %w", err)
	}
	renderTrack(os.Stdout, track)

	return nil
})

var showUser = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	user, err := c.User(ctx, logger, id)
	if nil != err {
		return fmt.Errorf("get user: %w", err)
	}
	renderUsers(os.Stdout, []types.User{*user})

	return nil
})

var showPlaylist = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	playlist, err := c.Playlist(ctx, logger, id)
	if nil != err {
		return fmt.Errorf("get playlist: %w", err)
	}
	renderPlaylists(os.Stdout, []types.Playlist{*playlist})
	renderTracks(os.Stdout, playlist.Tracks)

	return nil
})

var streamURL = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	protocol, err := protocolFlagValue(cmd)
	if nil != err {
		return err
	}

	u, err := c.StreamURL(ctx, logger, id, protocol)
	if nil != err {
		return fmt.Errorf("resolve stream url: %w", err)
	}
	fmt.Fprintln(os.Stdout, u)

	return nil
})

var waveform = run(func(ctx context.Context, logger zerolog.Logger, _ *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	w, err := c.TrackWaveform(ctx, logger, id)
	if nil != err {
		return fmt.Errorf("get waveform: %w", err)
	}
	renderWaveform(os.Stdout, w)

	return nil
})

var downloadTrack = run(func(ctx context.Context, logger zerolog.Logger, conf *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	protocol, err := protocolFlagValue(cmd)
	if nil != err {
		return err
	}

	dl := downloader.New(c, conf.Downloader, conf.SoundCloud.Timeouts, cache.New())

	var path string
	if cmd.Bool("pick") {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			logger.Error().Msg("Interactive transcoding selection requires a terminal")
			return exitCodeError(1)
		}

		track, err := dl.TrackMeta(ctx, logger, id)
		if nil != err {
			return fmt.Errorf("get track: %w", err)
		}

		t, err := pickTranscoding(track)
		if nil != err {
			return err
		}

		path, err = dl.Transcoding(ctx, logger, track, *t)
		if nil != err {
			return fmt.Errorf("download track: %w", err)
		}
	} else {
		path, err = dl.Track(ctx, logger, id, protocol)
		if nil != err {
			return fmt.Errorf("download track: %w", err)
		}
	}
	fmt.Fprintln(os.Stdout, path)

	return nil
})

func pickTranscoding(track *types.Track) (*types.Transcoding, error) {
	if len(track.Media.Transcodings) == 0 {
		return nil, types.ErrNoTranscoding
	}

	options := lo.Map(track.Media.Transcodings, func(t types.Transcoding, _ int) string {
		return transcodingLabel(t)
	})

	prompt := &survey.Select{ //nolint:exhaustruct
		Message:  "Select a transcoding to download:",
		Options:  options,
		PageSize: 10,
	}

	selected := 0
	if err := survey.AskOne(prompt, &selected); nil != err {
		if errors.Is(err, terminal.InterruptErr) {
			return nil, context.Canceled
		}

		return nil, fmt.Errorf("select transcoding: %v", err)
	}

	return &track.Media.Transcodings[selected], nil
}

var downloadPlaylist = run(func(ctx context.Context, logger zerolog.Logger, conf *config.Config, c *soundcloud.Client, cmd *cli.Command) error {
	id, err := identifierArg(cmd)
	if nil != err {
		return err
	}

	protocol, err := protocolFlagValue(cmd)
	if nil != err {
		return err
	}

	dl := downloader.New(c, conf.Downloader, conf.SoundCloud.Timeouts, cache.New())

	res, err := dl.Playlist(ctx, logger, id, protocol, cmd.String("dir"))
	if nil != res {
		renderPlaylistResult(os.Stdout, res)
	}
	if nil != err {
		if nil != res && res.Failed() > 0 && ctx.Err() == nil {
			logger.Error().Err(err).Int("failed", res.Failed()).Msg("Some playlist tracks failed to download")
			return exitCodeError(2)
		}

		return fmt.Errorf("download playlist: %w", err)
	}

	return nil
})
