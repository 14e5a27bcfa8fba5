package identity

// System daemons whose traffic is never attributed. Exact, case-sensitive.
var systemProcesses = map[string]struct{}{
	"launchd":         {},
	"kernel":          {},
	"syslogd":         {},
	"configd":         {},
	"airportd":        {},
	"symptomsd":       {},
	"mDNSResponder":   {},
	"wifip2pd":        {},
	"wifianalyticsd":  {},
	"rapportd":        {},
	"sharingd":        {},
	"identityservice": {},
	"ControlCenter":   {},
	"replicatord":     {},
	"usbmuxd":         {},
	"apsd":            {},
	"helpd":           {},
	"trustd":          {},
	"Stats":           {},
	"wifivelocityd":   {},
	"netbiosd":        {},
}

// Generic subprocess hosts, compared case-insensitively.
var runtimeHosts = []string{"electron"}

// RuntimeLabel names a runtime host process that could not be matched to a
// helper family.
const RuntimeLabel = "Electron"

// Helper suffixes, most specific first. nettop truncates long names, hence
// the " Hel" and " He" stubs.
var helperPatterns = []string{
	" CN Helper (Renderer)",
	" CN Helper (GPU)",
	" CN Helper (Plugin)",
	" CN Helper",
	" Helper (Renderer)",
	" Helper (GPU)",
	" Helper (Plugin)",
	" Helper",
	" Hel",
	" He",
	".helper",
	"-helper",
	"_helper",
}

// Mapping ties name keywords to one canonical application.
type Mapping struct {
	Keywords    []string
	Canonical   string
	DisplayName string
	BundleID    string
}

var mappings = []Mapping{
	{Keywords: []string{"douyin", "抖音"}, Canonical: "Douyin", DisplayName: "抖音", BundleID: "com.bytedance.douyin.desktop"},
	{Keywords: []string{"tiktok"}, Canonical: "TikTok", DisplayName: "TikTok", BundleID: "com.zhiliaoapp.musically"},
	{Keywords: []string{"doubao", "豆包"}, Canonical: "Doubao", DisplayName: "豆包", BundleID: "com.larus.nova"},
	{Keywords: []string{"trae"}, Canonical: "Trae", DisplayName: "Trae", BundleID: "com.trae.app"},
	{Keywords: []string{"weixin", "微信", "wechat"}, Canonical: "WeChat", DisplayName: "微信", BundleID: "com.tencent.xinWeChat"},
	{Keywords: []string{"企业微信", "wecom"}, Canonical: "WeCom", DisplayName: "企业微信", BundleID: "com.tencent.WeCom"},
	{Keywords: []string{"qq"}, Canonical: "QQ", DisplayName: "QQ", BundleID: "com.tencent.qq"},
	{Keywords: []string{"chrome", "谷歌浏览器"}, Canonical: "Chrome", DisplayName: "Chrome", BundleID: "com.google.Chrome"},
	{Keywords: []string{"safari"}, Canonical: "Safari", DisplayName: "Safari", BundleID: "com.apple.Safari"},
	{Keywords: []string{"firefox", "火狐"}, Canonical: "Firefox", DisplayName: "Firefox", BundleID: "org.mozilla.firefox"},
	{Keywords: []string{"finder", "访达"}, Canonical: "Finder", DisplayName: "访达", BundleID: "com.apple.finder"},
	{Keywords: []string{"terminal", "终端"}, Canonical: "Terminal", DisplayName: "终端", BundleID: "com.apple.Terminal"},
	{Keywords: []string{"vscode", "visual studio code"}, Canonical: "VSCode", DisplayName: "VS Code", BundleID: "com.microsoft.VSCode"},
	{Keywords: []string{"xcode"}, Canonical: "Xcode", DisplayName: "Xcode", BundleID: "com.apple.dt.Xcode"},
	{Keywords: []string{"music", "音乐"}, Canonical: "Music", DisplayName: "Music", BundleID: "com.apple.Music"},
	{Keywords: []string{"appstore", "应用商店"}, Canonical: "AppStore", DisplayName: "App Store", BundleID: "com.apple.AppStore"},
	{Keywords: []string{"wps", "wpsoffice"}, Canonical: "WPS", DisplayName: "WPS Office", BundleID: "com.kingsoft.wpsoffice.mac"},
	{Keywords: []string{"node"}, Canonical: "Node", DisplayName: "Node.js"},
	{Keywords: []string{"discord"}, Canonical: "Discord", DisplayName: "Discord", BundleID: "com.hnc.Discord"},
	{Keywords: []string{"slack"}, Canonical: "Slack", DisplayName: "Slack", BundleID: "com.tinyspeck.slackmacgap"},
	{Keywords: []string{"spotify"}, Canonical: "Spotify", DisplayName: "Spotify", BundleID: "com.spotify.client"},
	{Keywords: []string{"notion"}, Canonical: "Notion", DisplayName: "Notion", BundleID: "notion.id"},
	{Keywords: []string{"electron"}, Canonical: "Electron", DisplayName: "Electron"},
}
